package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sort"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medibook/clinic-appointments/internal/account"
	"github.com/medibook/clinic-appointments/internal/appointment"
	"github.com/medibook/clinic-appointments/internal/auth"
	"github.com/medibook/clinic-appointments/internal/review"
)

// In-memory fakes backing the services under test.

type memAccounts struct {
	doctors  map[uuid.UUID]*account.Doctor
	patients map[uuid.UUID]*account.Patient
}

func newMemAccounts() *memAccounts {
	return &memAccounts{
		doctors:  make(map[uuid.UUID]*account.Doctor),
		patients: make(map[uuid.UUID]*account.Patient),
	}
}

func (m *memAccounts) CreateDoctor(_ context.Context, d *account.Doctor) error {
	for _, e := range m.doctors {
		if e.RegistrationNumber == d.RegistrationNumber {
			return account.ErrDuplicateRegistration
		}
	}
	cp := *d
	m.doctors[d.ID] = &cp
	return nil
}

func (m *memAccounts) GetDoctorByID(_ context.Context, id uuid.UUID) (*account.Doctor, error) {
	d, ok := m.doctors[id]
	if !ok {
		return nil, account.ErrDoctorNotFound
	}
	cp := *d
	return &cp, nil
}

func (m *memAccounts) GetDoctorByRegistration(_ context.Context, reg string) (*account.Doctor, error) {
	for _, d := range m.doctors {
		if d.RegistrationNumber == reg {
			cp := *d
			return &cp, nil
		}
	}
	return nil, account.ErrDoctorNotFound
}

func (m *memAccounts) ListDoctors(_ context.Context) ([]account.Doctor, error) {
	var out []account.Doctor
	for _, d := range m.doctors {
		out = append(out, *d)
	}
	return out, nil
}

func (m *memAccounts) UpdateDoctorProfile(_ context.Context, id uuid.UUID, p account.DoctorProfile) (*account.Doctor, error) {
	d, ok := m.doctors[id]
	if !ok {
		return nil, account.ErrDoctorNotFound
	}
	d.Name = p.Name
	d.Specialization = p.Specialization
	d.Qualification = p.Qualification
	d.Experience = p.Experience
	d.MobileNumber = p.MobileNumber
	d.City = p.City
	d.MedicalCouncil = p.MedicalCouncil
	cp := *d
	return &cp, nil
}

func (m *memAccounts) CreatePatient(_ context.Context, p *account.Patient) error {
	for _, e := range m.patients {
		if e.Aadhaar == p.Aadhaar {
			return account.ErrDuplicateAadhaar
		}
	}
	cp := *p
	m.patients[p.ID] = &cp
	return nil
}

func (m *memAccounts) GetPatientByID(_ context.Context, id uuid.UUID) (*account.Patient, error) {
	p, ok := m.patients[id]
	if !ok {
		return nil, account.ErrPatientNotFound
	}
	cp := *p
	return &cp, nil
}

func (m *memAccounts) GetPatientByAadhaar(_ context.Context, aadhaar string) (*account.Patient, error) {
	for _, p := range m.patients {
		if p.Aadhaar == aadhaar {
			cp := *p
			return &cp, nil
		}
	}
	return nil, account.ErrPatientNotFound
}

type memAppointments struct {
	appts map[uuid.UUID]*appointment.Appointment
}

func newMemAppointments() *memAppointments {
	return &memAppointments{appts: make(map[uuid.UUID]*appointment.Appointment)}
}

func (m *memAppointments) Create(_ context.Context, a *appointment.Appointment) error {
	for _, e := range m.appts {
		if e.DoctorID == a.DoctorID && e.Time.Equal(a.Time) && e.Status == appointment.StatusScheduled {
			return appointment.ErrSlotTaken
		}
	}
	a.Status = appointment.StatusScheduled
	a.CreatedAt = time.Now()
	cp := *a
	m.appts[a.ID] = &cp
	return nil
}

func (m *memAppointments) GetByID(_ context.Context, id uuid.UUID) (*appointment.Appointment, error) {
	a, ok := m.appts[id]
	if !ok {
		return nil, appointment.ErrAppointmentNotFound
	}
	cp := *a
	return &cp, nil
}

func (m *memAppointments) GetScheduledAt(_ context.Context, doctorID uuid.UUID, at time.Time) (*appointment.Appointment, error) {
	for _, a := range m.appts {
		if a.DoctorID == doctorID && a.Time.Equal(at) && a.Status == appointment.StatusScheduled {
			cp := *a
			return &cp, nil
		}
	}
	return nil, appointment.ErrAppointmentNotFound
}

func (m *memAppointments) ListScheduledBetween(_ context.Context, doctorID uuid.UUID, from, to time.Time) ([]appointment.Appointment, error) {
	var out []appointment.Appointment
	for _, a := range m.appts {
		if a.DoctorID == doctorID && a.Status == appointment.StatusScheduled &&
			!a.Time.Before(from) && !a.Time.After(to) {
			out = append(out, *a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Time.Before(out[j].Time) })
	return out, nil
}

func (m *memAppointments) ListByPatientAadhaar(_ context.Context, aadhaar string) ([]appointment.Appointment, error) {
	var out []appointment.Appointment
	for _, a := range m.appts {
		if a.PatientAadhaar == aadhaar {
			out = append(out, *a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Time.After(out[j].Time) })
	return out, nil
}

func (m *memAppointments) ListByDoctor(_ context.Context, doctorID uuid.UUID) ([]appointment.Appointment, error) {
	var out []appointment.Appointment
	for _, a := range m.appts {
		if a.DoctorID == doctorID {
			out = append(out, *a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Time.After(out[j].Time) })
	return out, nil
}

func (m *memAppointments) ListAll(_ context.Context) ([]appointment.Appointment, error) {
	var out []appointment.Appointment
	for _, a := range m.appts {
		out = append(out, *a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Time.After(out[j].Time) })
	return out, nil
}

func (m *memAppointments) UpdateStatusFromScheduled(_ context.Context, id uuid.UUID, to appointment.Status) (*appointment.Appointment, error) {
	a, ok := m.appts[id]
	if !ok || a.Status != appointment.StatusScheduled {
		return nil, appointment.ErrAppointmentNotFound
	}
	a.Status = to
	cp := *a
	return &cp, nil
}

func (m *memAppointments) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := m.appts[id]; !ok {
		return appointment.ErrAppointmentNotFound
	}
	delete(m.appts, id)
	return nil
}

func (m *memAppointments) InsertEvent(context.Context, appointment.EventLog) error {
	return nil
}

type memReviews struct {
	reviews []review.Review
}

func (m *memReviews) Create(_ context.Context, r *review.Review) error {
	m.reviews = append(m.reviews, *r)
	return nil
}

func (m *memReviews) ListByDoctorName(_ context.Context, name string) ([]review.Review, error) {
	var out []review.Review
	for _, r := range m.reviews {
		if r.DoctorName == name {
			out = append(out, r)
		}
	}
	return out, nil
}

type noopLocker struct{}

func (noopLocker) WithBookingLock(ctx context.Context, _ uuid.UUID, _ time.Time, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type testAPI struct {
	server *httptest.Server
	tokens *auth.TokenManager
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()

	accounts := newMemAccounts()
	tokens := auth.NewTokenManager("test-secret", time.Hour)

	accountSvc := account.NewService(accounts, tokens, zerolog.Nop())
	apptSvc := appointment.NewService(newMemAppointments(), accounts, noopLocker{}, zerolog.Nop())
	reviewSvc := review.NewService(&memReviews{}, zerolog.Nop())

	router := NewRouter(RouterConfig{
		Accounts:     accountSvc,
		Appointments: apptSvc,
		Reviews:      reviewSvc,
		Tokens:       tokens,
		Logger:       zerolog.Nop(),
		Env:          "test",
		Version:      "test",
	})

	server := httptest.NewServer(router)
	t.Cleanup(server.Close)

	return &testAPI{server: server, tokens: tokens}
}

func (a *testAPI) do(t *testing.T, method, path, token string, body any) (*http.Response, []byte) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req, err := http.NewRequest(method, a.server.URL+path, &buf)
	require.NoError(t, err)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := a.server.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var out bytes.Buffer
	_, err = out.ReadFrom(resp.Body)
	require.NoError(t, err)

	return resp, out.Bytes()
}

func (a *testAPI) registerDoctor(t *testing.T) (DoctorResponse, string) {
	t.Helper()

	resp, body := a.do(t, http.MethodPost, "/api/auth/doctor/register", "", RegisterDoctorRequest{
		Name:               "Dr. Meera Nair",
		RegistrationNumber: "MCI-44821",
		Password:           "password123",
		Specialization:     "Cardiology",
		Qualification:      "MBBS, MD",
		Experience:         "12 years",
		MobileNumber:       "9876543210",
		City:               "Kochi",
		MedicalCouncil:     "Kerala Medical Council",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))

	var auth struct {
		Token string         `json:"token"`
		User  DoctorResponse `json:"user"`
	}
	require.NoError(t, json.Unmarshal(body, &auth))
	return auth.User, auth.Token
}

func (a *testAPI) registerPatient(t *testing.T, name, aadhaar string) (PatientResponse, string) {
	t.Helper()

	resp, body := a.do(t, http.MethodPost, "/api/auth/patient/register", "", RegisterPatientRequest{
		Name:     name,
		Aadhaar:  aadhaar,
		Password: "password123",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))

	var auth struct {
		Token string          `json:"token"`
		User  PatientResponse `json:"user"`
	}
	require.NoError(t, json.Unmarshal(body, &auth))
	return auth.User, auth.Token
}

const testSlot = "2024-06-10T09:00:00Z"

func TestRegisterAndLoginFlow(t *testing.T) {
	api := newTestAPI(t)

	_, token := api.registerDoctor(t)
	require.NotEmpty(t, token)

	resp, body := api.do(t, http.MethodPost, "/api/auth/doctor/login", "", LoginDoctorRequest{
		RegistrationNumber: "MCI-44821",
		Password:           "password123",
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode, string(body))

	resp, _ = api.do(t, http.MethodPost, "/api/auth/doctor/login", "", LoginDoctorRequest{
		RegistrationNumber: "MCI-44821",
		Password:           "wrong-password",
	})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, body = api.do(t, http.MethodGet, "/api/me", token, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var me DoctorResponse
	require.NoError(t, json.Unmarshal(body, &me))
	assert.Equal(t, "doctor", me.Role)
}

func TestBookingRequiresPatientToken(t *testing.T) {
	api := newTestAPI(t)
	doctor, doctorToken := api.registerDoctor(t)

	req := BookAppointmentRequest{DoctorID: doctor.ID.String(), AppointmentTime: testSlot}

	resp, _ := api.do(t, http.MethodPost, "/api/appointments", "", req)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, _ = api.do(t, http.MethodPost, "/api/appointments", doctorToken, req)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestBookingAndConflict(t *testing.T) {
	api := newTestAPI(t)
	doctor, _ := api.registerDoctor(t)
	_, ashaToken := api.registerPatient(t, "Asha Rao", "123412341234")
	_, raviToken := api.registerPatient(t, "Ravi Kumar", "999988887777")

	req := BookAppointmentRequest{DoctorID: doctor.ID.String(), AppointmentTime: testSlot}

	resp, body := api.do(t, http.MethodPost, "/api/appointments", ashaToken, req)
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))

	var appt AppointmentResponse
	require.NoError(t, json.Unmarshal(body, &appt))
	assert.Equal(t, "scheduled", appt.Status)
	assert.Equal(t, "Asha Rao", appt.PatientName)
	assert.Equal(t, "123412341234", appt.PatientAadhaar)

	resp, body = api.do(t, http.MethodPost, "/api/appointments", raviToken, req)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	var errResp ErrorResponse
	require.NoError(t, json.Unmarshal(body, &errResp))
	assert.Equal(t, "slot_conflict", errResp.Error)
}

func TestBookingRejectsUnknownDoctorAndBadTime(t *testing.T) {
	api := newTestAPI(t)
	_, patientToken := api.registerPatient(t, "Asha Rao", "123412341234")

	resp, body := api.do(t, http.MethodPost, "/api/appointments", patientToken, BookAppointmentRequest{
		DoctorID:        uuid.NewString(),
		AppointmentTime: testSlot,
	})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode, string(body))

	doctor, _ := api.registerDoctor(t)
	resp, _ = api.do(t, http.MethodPost, "/api/appointments", patientToken, BookAppointmentRequest{
		DoctorID:        doctor.ID.String(),
		AppointmentTime: "next tuesday at nine",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestAvailableSlotsEndpoint(t *testing.T) {
	api := newTestAPI(t)
	doctor, _ := api.registerDoctor(t)
	_, patientToken := api.registerPatient(t, "Asha Rao", "123412341234")

	path := fmt.Sprintf("/api/appointments/available-slots/%s/2024-06-10", doctor.ID)

	resp, body := api.do(t, http.MethodGet, path, patientToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))

	var slots AvailableSlotsResponse
	require.NoError(t, json.Unmarshal(body, &slots))
	assert.Len(t, slots.Slots, 16)

	// Booking 09:00 local removes that instant from the grid.
	at := time.Date(2024, 6, 10, 9, 0, 0, 0, time.Local).Format(time.RFC3339)
	resp, body = api.do(t, http.MethodPost, "/api/appointments", patientToken, BookAppointmentRequest{
		DoctorID:        doctor.ID.String(),
		AppointmentTime: at,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))

	resp, body = api.do(t, http.MethodGet, path, patientToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NoError(t, json.Unmarshal(body, &slots))
	assert.Len(t, slots.Slots, 15)
}

func TestStatusLifecycleOverHTTP(t *testing.T) {
	api := newTestAPI(t)
	doctor, doctorToken := api.registerDoctor(t)
	_, patientToken := api.registerPatient(t, "Asha Rao", "123412341234")

	resp, body := api.do(t, http.MethodPost, "/api/appointments", patientToken, BookAppointmentRequest{
		DoctorID:        doctor.ID.String(),
		AppointmentTime: testSlot,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))
	var appt AppointmentResponse
	require.NoError(t, json.Unmarshal(body, &appt))

	// Patient may not complete.
	resp, _ = api.do(t, http.MethodPut, "/api/appointments/"+appt.ID.String()+"/status", patientToken, UpdateStatusRequest{Status: "completed"})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	// Garbage status value.
	resp, _ = api.do(t, http.MethodPut, "/api/appointments/"+appt.ID.String()+"/status", doctorToken, UpdateStatusRequest{Status: "postponed"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	// Doctor completes.
	resp, body = api.do(t, http.MethodPut, "/api/appointments/"+appt.ID.String()+"/status", doctorToken, UpdateStatusRequest{Status: "completed"})
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))

	// Cancelling a completed appointment is rejected.
	resp, body = api.do(t, http.MethodPut, "/api/appointments/"+appt.ID.String()+"/cancel", patientToken, nil)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	var errResp ErrorResponse
	require.NoError(t, json.Unmarshal(body, &errResp))
	assert.Equal(t, "invalid_transition", errResp.Error)
}

func TestListingEndpoints(t *testing.T) {
	api := newTestAPI(t)
	doctor, doctorToken := api.registerDoctor(t)
	_, patientToken := api.registerPatient(t, "Asha Rao", "123412341234")

	for _, at := range []string{"2024-06-10T09:00:00Z", "2024-06-10T10:00:00Z"} {
		resp, body := api.do(t, http.MethodPost, "/api/appointments", patientToken, BookAppointmentRequest{
			DoctorID:        doctor.ID.String(),
			AppointmentTime: at,
		})
		require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))
	}

	resp, body := api.do(t, http.MethodGet, "/api/appointments/my", patientToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var mine []AppointmentResponse
	require.NoError(t, json.Unmarshal(body, &mine))
	require.Len(t, mine, 2)
	assert.True(t, mine[0].Time.After(mine[1].Time))

	resp, body = api.do(t, http.MethodGet, "/api/appointments/doctor", doctorToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var docs []AppointmentResponse
	require.NoError(t, json.Unmarshal(body, &docs))
	assert.Len(t, docs, 2)

	// Neither a patient nor a doctor may list system-wide.
	resp, _ = api.do(t, http.MethodGet, "/api/appointments/all", patientToken, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	adminToken, err := api.tokens.Issue(auth.Identity{ID: uuid.New(), Role: auth.RoleAdmin, Name: "ops"})
	require.NoError(t, err)
	resp, body = api.do(t, http.MethodGet, "/api/appointments/all", adminToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var all []AppointmentResponse
	require.NoError(t, json.Unmarshal(body, &all))
	assert.Len(t, all, 2)
}

func TestReviewEndpoints(t *testing.T) {
	api := newTestAPI(t)
	_, patientToken := api.registerPatient(t, "Asha Rao", "123412341234")

	reviewReq := CreateReviewRequest{
		DoctorName:               "Dr. Meera Nair",
		DoctorRegistrationNumber: "MCI-44821",
		Comment:                  "Thorough and kind.",
		Stars:                    5,
	}

	resp, body := api.do(t, http.MethodPost, "/api/reviews", patientToken, reviewReq)
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))
	var rv ReviewResponse
	require.NoError(t, json.Unmarshal(body, &rv))
	assert.Equal(t, "Asha Rao", rv.PatientName)

	bad := reviewReq
	bad.Stars = 6
	resp, _ = api.do(t, http.MethodPost, "/api/reviews", patientToken, bad)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, body = api.do(t, http.MethodGet, "/api/reviews/doctor/Dr.%20Meera%20Nair", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	var reviews []ReviewResponse
	require.NoError(t, json.Unmarshal(body, &reviews))
	assert.Len(t, reviews, 1)

	resp, _ = api.do(t, http.MethodGet, "/api/reviews/doctor/Dr.%20Nobody", "", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
