package transfer_test

import (
	"errors"
	"log/slog"
	"strings"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/adportal/adportal/internal"
	"github.com/adportal/adportal/internal/credcache"
	"github.com/adportal/adportal/internal/department"
	"github.com/adportal/adportal/internal/directory"
	"github.com/adportal/adportal/internal/employee"
	"github.com/adportal/adportal/internal/transfer"
)

func TestTransfer(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Transfer Suite")
}

type memoryStore struct {
	records   []*transfer.Record
	createErr error
}

func (m *memoryStore) Create(rec *transfer.Record) error {
	if m.createErr != nil {
		return m.createErr
	}
	clone := *rec
	m.records = append(m.records, &clone)
	return nil
}

func (m *memoryStore) List(limit, offset int) ([]*transfer.Record, error) {
	return m.records, nil
}

type fakeSession struct {
	entries []directory.Entry
	moveErr error
	moved   []string
}

func (f *fakeSession) SearchByLogin(login string, attributes []string) ([]directory.Entry, error) {
	return f.entries, nil
}

func (f *fakeSession) Move(currentDN, newOU string) error {
	if f.moveErr != nil {
		return f.moveErr
	}
	f.moved = append(f.moved, currentDN+" -> "+newOU)
	return nil
}

func (f *fakeSession) Close() {}

type fakeConnector struct {
	session *fakeSession
}

func (f *fakeConnector) Connect(login, password string) (transfer.DirectorySession, error) {
	return f.session, nil
}

type fakeCatalog struct {
	departments map[string]*department.Department
}

func (f *fakeCatalog) GetByNameFold(name string) (*department.Department, error) {
	if d, ok := f.departments[strings.ToLower(name)]; ok {
		return d, nil
	}
	return nil, department.ErrNotFound
}

type fakeMirror struct {
	employees map[string]*employee.Employee
	updateErr error
	updated   map[int64]*int64
}

func (f *fakeMirror) GetByUsername(username string) (*employee.Employee, error) {
	if e, ok := f.employees[username]; ok {
		return e, nil
	}
	return nil, employee.ErrNotFound
}

func (f *fakeMirror) UpdateDepartment(employeeID int64, departmentID *int64) error {
	if f.updateErr != nil {
		return f.updateErr
	}
	f.updated[employeeID] = departmentID
	return nil
}

var _ = Describe("Transfer Service", func() {
	var (
		store   *memoryStore
		cache   *credcache.Cache
		session *fakeSession
		catalog *fakeCatalog
		mirror  *fakeMirror
		service *transfer.Service
	)

	const (
		actorID   = int64(9)
		actor     = "admin@example.local"
		domain    = "example.local"
		container = "OU=New,DC=example,DC=local"
	)

	itDept := func() *department.Department { return catalog.departments["it"] }

	baseRequest := func() transfer.Request {
		return transfer.Request{
			Login:         "jdoe",
			NewOU:         "Sales",
			UpdateLocal:   true,
			ActorID:       actorID,
			ActorUsername: actor,
			IPAddress:     "10.0.0.5",
		}
	}

	BeforeEach(func() {
		store = &memoryStore{}
		cache = credcache.New(credcache.DefaultTTL)
		cache.Store(actorID, credcache.Credentials{Login: actor, Password: "pw"})
		session = &fakeSession{entries: []directory.Entry{{
			DN:             "CN=jane doe,OU=IT,OU=New,DC=example,DC=local",
			SAMAccountName: "jdoe",
			DisplayName:    "jane doe",
		}}}
		catalog = &fakeCatalog{departments: map[string]*department.Department{
			"it":    {ID: 1, Name: "IT"},
			"sales": {ID: 2, Name: "Sales"},
		}}
		itName := itDept().Name
		mirror = &fakeMirror{
			employees: map[string]*employee.Employee{
				"jdoe@example.local": {ID: 11, Username: "jdoe@example.local", Department: &itName},
			},
			updated: make(map[int64]*int64),
		}
		service = transfer.NewService(store, cache, &fakeConnector{session: session},
			catalog, mirror, domain, container, slog.Default())
	})

	It("moves the person, updates the mirror and records success", func() {
		rec, err := service.Execute(baseRequest())
		Expect(err).NotTo(HaveOccurred())

		Expect(rec.Status).To(Equal(transfer.StatusSuccess))
		Expect(rec.DBUpdated).To(BeTrue())
		Expect(rec.OldOU).To(Equal("IT"))
		Expect(rec.NewOU).To(Equal("Sales"))
		Expect(rec.OldDN).To(Equal("CN=jane doe,OU=IT,OU=New,DC=example,DC=local"))
		Expect(rec.NewDN).NotTo(BeNil())
		Expect(*rec.NewDN).To(Equal("CN=jane doe,OU=Sales,OU=New,DC=example,DC=local"))
		Expect(*rec.OldDepartment).To(Equal("IT"))
		Expect(*rec.NewDepartment).To(Equal("Sales"))
		Expect(rec.IPAddress).To(Equal("10.0.0.5"))

		Expect(session.moved).To(HaveLen(1))
		Expect(*mirror.updated[11]).To(Equal(int64(2)))
		Expect(store.records).To(HaveLen(1))
	})

	It("leaves the mirror alone when no local update was requested", func() {
		req := baseRequest()
		req.UpdateLocal = false

		rec, err := service.Execute(req)
		Expect(err).NotTo(HaveOccurred())

		Expect(rec.Status).To(Equal(transfer.StatusSuccess))
		Expect(rec.DBUpdated).To(BeFalse())
		Expect(rec.ErrorMessage).To(BeEmpty())
		Expect(session.moved).To(HaveLen(1))
		Expect(mirror.updated).To(BeEmpty())
		Expect(store.records).To(HaveLen(1))

		it := itDept().Name
		Expect(*mirror.employees["jdoe@example.local"].Department).To(Equal(it))
	})

	It("records a failed attempt when the directory rejects the move", func() {
		session.moveErr = errors.New("insufficient access rights")

		rec, err := service.Execute(baseRequest())
		Expect(err).NotTo(HaveOccurred())

		Expect(rec.Status).To(Equal(transfer.StatusFailed))
		Expect(rec.NewDN).To(BeNil())
		Expect(rec.DBUpdated).To(BeFalse())
		Expect(rec.ErrorMessage).To(ContainSubstring("insufficient access rights"))
		Expect(mirror.updated).To(BeEmpty())
		Expect(store.records).To(HaveLen(1))
	})

	It("downgrades to partial when no department matches the target OU", func() {
		req := baseRequest()
		req.NewOU = "Warehouse"

		rec, err := service.Execute(req)
		Expect(err).NotTo(HaveOccurred())

		Expect(rec.Status).To(Equal(transfer.StatusPartial))
		Expect(rec.DBUpdated).To(BeFalse())
		Expect(rec.ErrorMessage).To(ContainSubstring("create it first"))
		Expect(session.moved).To(HaveLen(1), "the directory move still happened")
		Expect(store.records).To(HaveLen(1))
	})

	It("downgrades to partial when the person has no local profile", func() {
		delete(mirror.employees, "jdoe@example.local")

		rec, err := service.Execute(baseRequest())
		Expect(err).NotTo(HaveOccurred())

		Expect(rec.Status).To(Equal(transfer.StatusPartial))
		Expect(rec.DBUpdated).To(BeFalse())
		Expect(rec.ErrorMessage).To(ContainSubstring("run a directory sync"))
		Expect(store.records).To(HaveLen(1))
	})

	It("reports the missing profile before the missing department", func() {
		delete(mirror.employees, "jdoe@example.local")
		req := baseRequest()
		req.NewOU = "Warehouse"

		rec, err := service.Execute(req)
		Expect(err).NotTo(HaveOccurred())

		Expect(rec.Status).To(Equal(transfer.StatusPartial))
		Expect(rec.ErrorMessage).To(ContainSubstring("run a directory sync"))
	})

	It("downgrades to partial when the local update fails", func() {
		mirror.updateErr = errors.New("connection reset")

		rec, err := service.Execute(baseRequest())
		Expect(err).NotTo(HaveOccurred())

		Expect(rec.Status).To(Equal(transfer.StatusPartial))
		Expect(rec.DBUpdated).To(BeFalse())
		Expect(store.records).To(HaveLen(1))
	})

	It("rejects a transfer into the person's current OU", func() {
		req := baseRequest()
		req.NewOU = "it"

		_, err := service.Execute(req)
		Expect(err).To(MatchError(transfer.ErrSameOU))
		Expect(store.records).To(BeEmpty())
	})

	It("rejects blank input", func() {
		req := baseRequest()
		req.Login = "  "
		_, err := service.Execute(req)
		Expect(err).To(MatchError(transfer.ErrEmptyLogin))

		req = baseRequest()
		req.NewOU = ""
		_, err = service.Execute(req)
		Expect(err).To(MatchError(transfer.ErrEmptyOU))
	})

	It("refuses to run without cached credentials", func() {
		cache.Delete(actorID)
		_, err := service.Execute(baseRequest())
		Expect(err).To(MatchError(internal.ErrCredentialsExpired))
	})

	It("returns an error when the person is not in the directory", func() {
		session.entries = nil
		_, err := service.Execute(baseRequest())
		Expect(err).To(MatchError(directory.ErrNotFound))
		Expect(store.records).To(BeEmpty())
	})

	It("fails hard when the audit record cannot be persisted", func() {
		store.createErr = errors.New("disk full")
		_, err := service.Execute(baseRequest())
		Expect(err).To(HaveOccurred())
	})
})
