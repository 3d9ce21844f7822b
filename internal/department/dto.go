package department

type CreateDepartmentDTO struct {
	Name string `json:"name"`
}

func (d *CreateDepartmentDTO) Validate() error {
	if d.Name == "" {
		return ErrEmptyName
	}
	return nil
}

type DepartmentsResponse struct {
	Departments []*Department `json:"departments"`
}
