package services

import (
	"context"
	"fmt"
	"time"

	"github.com/edafa/admissions/internal/app/models"
	"github.com/edafa/admissions/internal/app/repositories"
)

// In-memory fakes of the store interfaces. Each fake assigns sequential IDs
// and returns the same sentinel errors as the pgx repositories.

type fakeTx struct {
	calls int
}

func (f *fakeTx) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	f.calls++
	return fn(ctx)
}

type fakeMailer struct {
	applicationEmails []string
	enrollmentEmails  []string
	failSend          bool
}

func (f *fakeMailer) SendApplicationReceivedEmail(toEmail, toName, applicationNumber string) error {
	if f.failSend {
		return fmt.Errorf("smtp unavailable")
	}
	f.applicationEmails = append(f.applicationEmails, toEmail)
	return nil
}

func (f *fakeMailer) SendEnrollmentEmail(toEmail, toName, registrationNumber string) error {
	if f.failSend {
		return fmt.Errorf("smtp unavailable")
	}
	f.enrollmentEmails = append(f.enrollmentEmails, toEmail)
	return nil
}

type fakePersonStore struct {
	people []*models.Person
	nextID int64
}

func (f *fakePersonStore) assign() int64 {
	f.nextID++
	return f.nextID
}

func (f *fakePersonStore) FindByEmail(ctx context.Context, email string) (*models.Person, error) {
	for _, p := range f.people {
		if p.Email == email && email != "" && p.Active {
			return clonePerson(p), nil
		}
	}
	return nil, repositories.ErrPersonNotFound
}

func (f *fakePersonStore) FindByNameAndEmail(ctx context.Context, name, email string) (*models.Person, error) {
	for _, p := range f.people {
		if p.Name == name && p.Email == email && p.Active {
			return clonePerson(p), nil
		}
	}
	return nil, repositories.ErrPersonNotFound
}

func (f *fakePersonStore) GetByID(ctx context.Context, id int64) (*models.Person, error) {
	for _, p := range f.people {
		if p.ID == id {
			return clonePerson(p), nil
		}
	}
	return nil, repositories.ErrPersonNotFound
}

func (f *fakePersonStore) Create(ctx context.Context, p *models.Person) error {
	p.ID = f.assign()
	p.Active = true
	f.people = append(f.people, clonePerson(p))
	return nil
}

func (f *fakePersonStore) Update(ctx context.Context, p *models.Person) error {
	for i, existing := range f.people {
		if existing.ID == p.ID {
			f.people[i] = clonePerson(p)
			return nil
		}
	}
	return repositories.ErrPersonNotFound
}

func (f *fakePersonStore) MarkStudent(ctx context.Context, id int64) error {
	for _, p := range f.people {
		if p.ID == id {
			p.IsStudent = true
			return nil
		}
	}
	return repositories.ErrPersonNotFound
}

func clonePerson(p *models.Person) *models.Person {
	cp := *p
	return &cp
}

type fakeAdmissionStore struct {
	admissions []*models.Admission
	nextID     int64
}

func (f *fakeAdmissionStore) find(id int64) *models.Admission {
	for _, a := range f.admissions {
		if a.ID == id {
			return a
		}
	}
	return nil
}

func (f *fakeAdmissionStore) Create(ctx context.Context, a *models.Admission) error {
	f.nextID++
	a.ID = f.nextID
	cp := *a
	f.admissions = append(f.admissions, &cp)
	return nil
}

func (f *fakeAdmissionStore) GetByID(ctx context.Context, id int64) (*models.Admission, error) {
	if a := f.find(id); a != nil {
		cp := *a
		return &cp, nil
	}
	return nil, repositories.ErrAdmissionNotFound
}

func (f *fakeAdmissionStore) GetByApplicationNumber(ctx context.Context, number, email string) (*models.Admission, error) {
	for _, a := range f.admissions {
		if a.ApplicationNumber == number && a.Email == email {
			cp := *a
			return &cp, nil
		}
	}
	return nil, repositories.ErrAdmissionNotFound
}

func (f *fakeAdmissionStore) UpdateStatus(ctx context.Context, id int64, status models.AdmissionState) error {
	a := f.find(id)
	if a == nil {
		return repositories.ErrAdmissionNotFound
	}
	a.Status = status
	return nil
}

func (f *fakeAdmissionStore) UpdateSelection(ctx context.Context, updated *models.Admission) error {
	a := f.find(updated.ID)
	if a == nil {
		return repositories.ErrAdmissionNotFound
	}
	a.CourseID = updated.CourseID
	a.BatchID = updated.BatchID
	a.DepartmentID = updated.DepartmentID
	a.ProgramID = updated.ProgramID
	a.FeesTermID = updated.FeesTermID
	a.Fee = updated.Fee
	a.Currency = updated.Currency
	return nil
}

func (f *fakeAdmissionStore) SetPerson(ctx context.Context, id, personID int64) error {
	a := f.find(id)
	if a == nil {
		return repositories.ErrAdmissionNotFound
	}
	a.PersonID = &personID
	return nil
}

func (f *fakeAdmissionStore) SetPhotoPath(ctx context.Context, id int64, path string) error {
	a := f.find(id)
	if a == nil {
		return repositories.ErrAdmissionNotFound
	}
	a.PhotoPath = path
	return nil
}

func (f *fakeAdmissionStore) SetInvoice(ctx context.Context, id, invoiceID int64) error {
	a := f.find(id)
	if a == nil {
		return repositories.ErrAdmissionNotFound
	}
	a.InvoiceID = &invoiceID
	return nil
}

func (f *fakeAdmissionStore) SetTransaction(ctx context.Context, id, transactionID int64) error {
	a := f.find(id)
	if a == nil {
		return repositories.ErrAdmissionNotFound
	}
	a.TransactionID = &transactionID
	return nil
}

func (f *fakeAdmissionStore) SetPaymentResult(ctx context.Context, updated *models.Admission) error {
	a := f.find(updated.ID)
	if a == nil {
		return repositories.ErrAdmissionNotFound
	}
	a.PaymentStatus = updated.PaymentStatus
	a.PaymentDate = updated.PaymentDate
	a.PaymentReference = updated.PaymentReference
	a.Status = updated.Status
	return nil
}

func (f *fakeAdmissionStore) SetEnrollment(ctx context.Context, id, studentID int64, admissionDate time.Time) error {
	a := f.find(id)
	if a == nil {
		return repositories.ErrAdmissionNotFound
	}
	a.StudentID = &studentID
	a.AdmissionDate = &admissionDate
	a.IsStudent = true
	a.Status = models.StateDone
	return nil
}

func (f *fakeAdmissionStore) List(ctx context.Context, filter repositories.AdmissionFilter, offset uint64, limit int) ([]*models.Admission, int64, error) {
	var matched []*models.Admission
	for _, a := range f.admissions {
		if filter.CycleID != nil && a.CycleID != *filter.CycleID {
			continue
		}
		if filter.Status != nil && a.Status != *filter.Status {
			continue
		}
		if filter.Email != "" && a.Email != filter.Email {
			continue
		}
		cp := *a
		matched = append(matched, &cp)
	}
	return matched, int64(len(matched)), nil
}

func (f *fakeAdmissionStore) CountInStatus(ctx context.Context, cycleID int64, status models.AdmissionState) (int, error) {
	count := 0
	for _, a := range f.admissions {
		if a.CycleID == cycleID && a.Status == status {
			count++
		}
	}
	return count, nil
}

type fakeCycleStore struct {
	cycles []*models.AdmissionCycle
	locked []int64
}

func (f *fakeCycleStore) GetByID(ctx context.Context, id int64) (*models.AdmissionCycle, error) {
	for _, c := range f.cycles {
		if c.ID == id {
			return c, nil
		}
	}
	return nil, repositories.ErrCycleNotFound
}

func (f *fakeCycleStore) ListOpen(ctx context.Context, now time.Time) ([]*models.AdmissionCycle, error) {
	var open []*models.AdmissionCycle
	for _, c := range f.cycles {
		if c.Active && c.State == models.CycleApplication && c.IsOpenAt(now) {
			open = append(open, c)
		}
	}
	return open, nil
}

func (f *fakeCycleStore) LockForUpdate(ctx context.Context, id int64) error {
	if _, err := f.GetByID(ctx, id); err != nil {
		return err
	}
	f.locked = append(f.locked, id)
	return nil
}

type fakeStudentStore struct {
	students      []*models.Student
	courseDetails []*models.CourseDetail
	feeDues       []*models.StudentFeeDue
	registrations []*models.SubjectRegistration
	nextID        int64
}

func (f *fakeStudentStore) FindByPersonID(ctx context.Context, personID int64) (*models.Student, error) {
	for _, s := range f.students {
		if s.PersonID == personID && s.Active {
			return s, nil
		}
	}
	return nil, repositories.ErrStudentNotFound
}

func (f *fakeStudentStore) GetByID(ctx context.Context, id int64) (*models.Student, error) {
	for _, s := range f.students {
		if s.ID == id {
			return s, nil
		}
	}
	return nil, repositories.ErrStudentNotFound
}

func (f *fakeStudentStore) Create(ctx context.Context, s *models.Student) error {
	f.nextID++
	s.ID = f.nextID
	f.students = append(f.students, s)
	return nil
}

func (f *fakeStudentStore) SetUser(ctx context.Context, studentID, userID int64) error {
	for _, s := range f.students {
		if s.ID == studentID {
			s.UserID = &userID
			return nil
		}
	}
	return repositories.ErrStudentNotFound
}

func (f *fakeStudentStore) AddCourseDetail(ctx context.Context, d *models.CourseDetail) error {
	f.nextID++
	d.ID = f.nextID
	f.courseDetails = append(f.courseDetails, d)
	return nil
}

func (f *fakeStudentStore) AddFeeDue(ctx context.Context, due *models.StudentFeeDue) error {
	f.nextID++
	due.ID = f.nextID
	f.feeDues = append(f.feeDues, due)
	return nil
}

func (f *fakeStudentStore) AddSubjectRegistration(ctx context.Context, reg *models.SubjectRegistration) error {
	f.nextID++
	reg.ID = f.nextID
	f.registrations = append(f.registrations, reg)
	return nil
}

func (f *fakeStudentStore) GetCourseDetails(ctx context.Context, studentID int64) ([]models.CourseDetail, error) {
	var out []models.CourseDetail
	for _, d := range f.courseDetails {
		if d.StudentID == studentID {
			out = append(out, *d)
		}
	}
	return out, nil
}

func (f *fakeStudentStore) GetFeeDues(ctx context.Context, studentID int64) ([]models.StudentFeeDue, error) {
	var out []models.StudentFeeDue
	for _, due := range f.feeDues {
		if due.StudentID == studentID {
			out = append(out, *due)
		}
	}
	return out, nil
}

type fakeInvoiceStore struct {
	invoices []*models.Invoice
	nextID   int64
}

func (f *fakeInvoiceStore) Create(ctx context.Context, inv *models.Invoice) error {
	for _, existing := range f.invoices {
		if existing.AdmissionID == inv.AdmissionID {
			return repositories.ErrInvoiceAlreadyExists
		}
	}
	f.nextID++
	inv.ID = f.nextID
	f.invoices = append(f.invoices, inv)
	return nil
}

func (f *fakeInvoiceStore) GetByID(ctx context.Context, id int64) (*models.Invoice, error) {
	for _, inv := range f.invoices {
		if inv.ID == id {
			return inv, nil
		}
	}
	return nil, repositories.ErrInvoiceNotFound
}

func (f *fakeInvoiceStore) GetByAdmissionID(ctx context.Context, admissionID int64) (*models.Invoice, error) {
	for _, inv := range f.invoices {
		if inv.AdmissionID == admissionID {
			return inv, nil
		}
	}
	return nil, repositories.ErrInvoiceNotFound
}

func (f *fakeInvoiceStore) UpdateState(ctx context.Context, id int64, state string) error {
	for _, inv := range f.invoices {
		if inv.ID == id {
			inv.State = state
			return nil
		}
	}
	return repositories.ErrInvoiceNotFound
}

type fakeProductStore struct {
	products []*models.Product
	nextID   int64
}

func (f *fakeProductStore) GetByID(ctx context.Context, id int64) (*models.Product, error) {
	for _, p := range f.products {
		if p.ID == id {
			return p, nil
		}
	}
	return nil, repositories.ErrProductNotFound
}

func (f *fakeProductStore) FindByName(ctx context.Context, name string) (*models.Product, error) {
	for _, p := range f.products {
		if p.Name == name && p.Active {
			return p, nil
		}
	}
	return nil, repositories.ErrProductNotFound
}

func (f *fakeProductStore) Create(ctx context.Context, p *models.Product) error {
	f.nextID++
	p.ID = f.nextID
	f.products = append(f.products, p)
	return nil
}

type fakePaymentStore struct {
	providers    []*models.PaymentProvider
	transactions []*models.PaymentTransaction
	nextID       int64
}

func (f *fakePaymentStore) GetProvider(ctx context.Context, id int64) (*models.PaymentProvider, error) {
	for _, p := range f.providers {
		if p.ID == id && p.Enabled {
			return p, nil
		}
	}
	return nil, repositories.ErrProviderNotFound
}

func (f *fakePaymentStore) CreateTransaction(ctx context.Context, tx *models.PaymentTransaction) error {
	f.nextID++
	tx.ID = f.nextID
	f.transactions = append(f.transactions, tx)
	return nil
}

func (f *fakePaymentStore) GetTransaction(ctx context.Context, id int64) (*models.PaymentTransaction, error) {
	for _, tx := range f.transactions {
		if tx.ID == id {
			return tx, nil
		}
	}
	return nil, repositories.ErrTransactionNotFound
}

func (f *fakePaymentStore) UpdateTransactionState(ctx context.Context, id int64, state models.TransactionState, at time.Time) error {
	for _, tx := range f.transactions {
		if tx.ID == id {
			tx.State = state
			tx.LastStateChange = &at
			return nil
		}
	}
	return repositories.ErrTransactionNotFound
}

type fakeAcademicStore struct {
	departments []*models.Department
	programs    []*models.Program
	courses     []*models.Course
	batches     []*models.Batch
}

func (f *fakeAcademicStore) GetDepartments(ctx context.Context) ([]*models.Department, error) {
	return f.departments, nil
}

func (f *fakeAcademicStore) GetDepartmentByID(ctx context.Context, id int64) (*models.Department, error) {
	for _, d := range f.departments {
		if d.ID == id {
			return d, nil
		}
	}
	return nil, repositories.ErrDepartmentNotFound
}

func (f *fakeAcademicStore) GetProgramsByDepartment(ctx context.Context, departmentID int64) ([]*models.Program, error) {
	var out []*models.Program
	for _, p := range f.programs {
		if p.DepartmentID == departmentID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakeAcademicStore) GetProgramByID(ctx context.Context, id int64) (*models.Program, error) {
	for _, p := range f.programs {
		if p.ID == id {
			return p, nil
		}
	}
	return nil, repositories.ErrProgramNotFound
}

func (f *fakeAcademicStore) GetCourseByID(ctx context.Context, id int64) (*models.Course, error) {
	for _, c := range f.courses {
		if c.ID == id {
			return c, nil
		}
	}
	return nil, repositories.ErrCourseNotFound
}

func (f *fakeAcademicStore) GetCoursesByProgram(ctx context.Context, programID int64) ([]*models.Course, error) {
	var out []*models.Course
	for _, c := range f.courses {
		if c.ProgramID != nil && *c.ProgramID == programID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (f *fakeAcademicStore) GetBatchesByCourse(ctx context.Context, courseID int64) ([]*models.Batch, error) {
	var out []*models.Batch
	for _, b := range f.batches {
		if b.CourseID == courseID {
			out = append(out, b)
		}
	}
	return out, nil
}

func (f *fakeAcademicStore) GetBatchByID(ctx context.Context, id int64) (*models.Batch, error) {
	for _, b := range f.batches {
		if b.ID == id {
			return b, nil
		}
	}
	return nil, repositories.ErrBatchNotFound
}

type fakeFeeTermStore struct {
	terms []*models.FeeTerm
}

func (f *fakeFeeTermStore) GetByID(ctx context.Context, id int64) (*models.FeeTerm, error) {
	for _, t := range f.terms {
		if t.ID == id {
			return t, nil
		}
	}
	return nil, repositories.ErrFeeTermNotFound
}

type fakeSequenceStore struct {
	counters map[string]int
}

func (f *fakeSequenceStore) NextNumber(ctx context.Context, code string) (string, error) {
	if f.counters == nil {
		f.counters = make(map[string]int)
	}
	f.counters[code]++
	prefix := map[string]string{
		repositories.SequenceAdmission: "ADM",
		repositories.SequenceInvoice:   "INV",
	}[code]
	return fmt.Sprintf("%s%05d", prefix, f.counters[code]), nil
}

type fakeUserStore struct {
	users  []*models.User
	nextID int64
}

func (f *fakeUserStore) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	for _, u := range f.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, repositories.ErrUserNotFound
}

func (f *fakeUserStore) GetByID(ctx context.Context, id int64) (*models.User, error) {
	for _, u := range f.users {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, repositories.ErrUserNotFound
}

func (f *fakeUserStore) Create(ctx context.Context, u *models.User) error {
	for _, existing := range f.users {
		if existing.Email == u.Email {
			return repositories.ErrUserEmailExists
		}
	}
	f.nextID++
	u.ID = f.nextID
	f.users = append(f.users, u)
	return nil
}
