package sync_test

import (
	"errors"
	"log/slog"
	"strings"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/adportal/adportal/internal"
	"github.com/adportal/adportal/internal/credcache"
	"github.com/adportal/adportal/internal/directory"
	"github.com/adportal/adportal/internal/sync"
)

func TestSync(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Sync Suite")
}

type memoryStore struct {
	users       map[string]bool
	departments map[string]*sync.Department
	jobs        map[string]*sync.Job
	employees   map[string]*sync.EmployeeRecord
	nextID      int64
	failTx      error
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		users:       make(map[string]bool),
		departments: make(map[string]*sync.Department),
		jobs:        make(map[string]*sync.Job),
		employees:   make(map[string]*sync.EmployeeRecord),
		nextID:      1,
	}
}

func (m *memoryStore) addDepartment(name string) {
	m.departments[strings.ToLower(name)] = &sync.Department{ID: m.nextID, Name: name}
	m.nextID++
}

func (m *memoryStore) InTransaction(fn func(tx sync.Store) error) error {
	if m.failTx != nil {
		return m.failTx
	}
	return fn(m)
}

func (m *memoryStore) EnsureUser(username string) error {
	m.users[username] = true
	return nil
}

func (m *memoryStore) GetDepartmentByNameFold(name string) (*sync.Department, error) {
	if d, ok := m.departments[strings.ToLower(name)]; ok {
		return d, nil
	}
	return nil, sync.ErrDepartmentNotFound
}

func (m *memoryStore) GetOrCreateJob(title string) (*sync.Job, error) {
	if j, ok := m.jobs[title]; ok {
		return j, nil
	}
	j := &sync.Job{ID: m.nextID, Title: title}
	m.nextID++
	m.jobs[title] = j
	return j, nil
}

func (m *memoryStore) GetEmployeeByUsername(username string) (*sync.EmployeeRecord, error) {
	if e, ok := m.employees[username]; ok {
		clone := *e
		return &clone, nil
	}
	return nil, sync.ErrEmployeeNotFound
}

func (m *memoryStore) CreateEmployee(rec *sync.EmployeeRecord) error {
	rec.ID = m.nextID
	m.nextID++
	clone := *rec
	m.employees[rec.Username] = &clone
	return nil
}

func (m *memoryStore) UpdateEmployee(rec *sync.EmployeeRecord) error {
	clone := *rec
	m.employees[rec.Username] = &clone
	return nil
}

type fakeSession struct {
	entries []directory.Entry
	err     error
}

func (f *fakeSession) SearchAll(attributes []string) ([]directory.Entry, error) {
	return f.entries, f.err
}

func (f *fakeSession) Close() {}

type fakeConnector struct {
	session    *fakeSession
	connectErr error
}

func (f *fakeConnector) Connect(login, password string) (sync.DirectorySession, error) {
	if f.connectErr != nil {
		return nil, f.connectErr
	}
	return f.session, nil
}

var _ = Describe("Sync Service", func() {
	var (
		store     *memoryStore
		cache     *credcache.Cache
		connector *fakeConnector
		service   *sync.Service
	)

	const (
		userID = int64(42)
		domain = "example.local"
	)

	login := func() {
		cache.Store(userID, credcache.Credentials{Login: "admin@example.local", Password: "pw"})
	}

	BeforeEach(func() {
		store = newMemoryStore()
		store.addDepartment("IT")
		cache = credcache.New(credcache.DefaultTTL)
		connector = &fakeConnector{session: &fakeSession{}}
		service = sync.NewService(store, cache, connector, domain, slog.Default())
	})

	It("refuses to run without cached credentials", func() {
		_, err := service.Run(userID)
		Expect(err).To(MatchError(internal.ErrCredentialsExpired))
	})

	It("propagates connection failures", func() {
		login()
		connector.connectErr = errors.New("dial tcp: connection refused")
		_, err := service.Run(userID)
		Expect(err).To(HaveOccurred())
	})

	It("creates the user, employee and job for a fresh directory entry", func() {
		login()
		connector.session.entries = []directory.Entry{{
			DN:             "CN=jane doe,OU=IT,OU=New,DC=example,DC=local",
			SAMAccountName: "jdoe",
			DisplayName:    "jane doe",
			Title:          "Engineer",
		}}

		result, err := service.Run(userID)
		Expect(err).NotTo(HaveOccurred())
		Expect(result.Total).To(Equal(1))
		Expect(result.Synced).To(Equal(1))
		Expect(result.Skipped).To(Equal(0))
		Expect(result.MissingDepartments).To(BeEmpty())

		Expect(store.users).To(HaveKey("jdoe@example.local"))
		Expect(store.jobs).To(HaveKey("Engineer"))

		emp := store.employees["jdoe@example.local"]
		Expect(emp).NotTo(BeNil())
		Expect(emp.FullNameEn).To(Equal("jane doe"))
		Expect(emp.DepartmentID).NotTo(BeNil())
		Expect(emp.JobID).NotTo(BeNil())
	})

	It("is idempotent: a second run right after the first syncs nothing", func() {
		login()
		connector.session.entries = []directory.Entry{{
			DN:             "CN=jane doe,OU=IT,OU=New,DC=example,DC=local",
			SAMAccountName: "jdoe",
			DisplayName:    "jane doe",
			Title:          "Engineer",
		}}

		first, err := service.Run(userID)
		Expect(err).NotTo(HaveOccurred())
		Expect(first.Synced).To(Equal(1))

		second, err := service.Run(userID)
		Expect(err).NotTo(HaveOccurred())
		Expect(second.Synced).To(Equal(0))
		Expect(second.Skipped).To(Equal(1))
	})

	It("skips entries without a usable login", func() {
		login()
		connector.session.entries = []directory.Entry{
			{DN: "CN=printer svc,OU=IT,DC=example,DC=local", DisplayName: "printer svc"},
			{DN: "CN=jane doe,OU=IT,DC=example,DC=local", SAMAccountName: "jdoe", DisplayName: "jane doe"},
		}

		result, err := service.Run(userID)
		Expect(err).NotTo(HaveOccurred())
		Expect(result.Total).To(Equal(2))
		Expect(result.Synced).To(Equal(1))
		Expect(result.Skipped).To(Equal(1))
		Expect(store.employees).NotTo(HaveKey("@example.local"))
	})

	It("leaves the department unassigned and reports OUs with no catalog match", func() {
		login()
		connector.session.entries = []directory.Entry{{
			DN:             "CN=bob,OU=Warehouse,DC=example,DC=local",
			SAMAccountName: "bob",
			DisplayName:    "bob",
		}}

		result, err := service.Run(userID)
		Expect(err).NotTo(HaveOccurred())
		Expect(result.MissingDepartments).To(Equal([]string{"Warehouse"}))

		emp := store.employees["bob@example.local"]
		Expect(emp.DepartmentID).To(BeNil())
	})

	It("matches department names to OUs case-insensitively", func() {
		login()
		connector.session.entries = []directory.Entry{{
			DN:             "CN=bob,OU=it,DC=example,DC=local",
			SAMAccountName: "bob",
			DisplayName:    "bob",
		}}

		result, err := service.Run(userID)
		Expect(err).NotTo(HaveOccurred())
		Expect(result.MissingDepartments).To(BeEmpty())
		Expect(store.employees["bob@example.local"].DepartmentID).NotTo(BeNil())
	})

	It("picks up department moves on later runs", func() {
		login()
		store.addDepartment("Sales")
		connector.session.entries = []directory.Entry{{
			DN:             "CN=jane doe,OU=IT,DC=example,DC=local",
			SAMAccountName: "jdoe",
			DisplayName:    "jane doe",
		}}

		_, err := service.Run(userID)
		Expect(err).NotTo(HaveOccurred())

		connector.session.entries[0].DN = "CN=jane doe,OU=Sales,DC=example,DC=local"
		result, err := service.Run(userID)
		Expect(err).NotTo(HaveOccurred())
		Expect(result.Synced).To(Equal(1))

		dept := store.departments["sales"]
		Expect(*store.employees["jdoe@example.local"].DepartmentID).To(Equal(dept.ID))
	})

	It("fails the whole run when the transaction fails", func() {
		login()
		store.failTx = errors.New("deadlock detected")
		connector.session.entries = []directory.Entry{{
			DN:             "CN=jane doe,OU=IT,DC=example,DC=local",
			SAMAccountName: "jdoe",
		}}

		_, err := service.Run(userID)
		Expect(err).To(HaveOccurred())
	})
})
