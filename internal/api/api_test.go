package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/hackgods/carehub/internal/access"
	"github.com/hackgods/carehub/internal/catalog"
	"github.com/hackgods/carehub/internal/consultation"
	"github.com/hackgods/carehub/internal/identity"
	"github.com/hackgods/carehub/internal/lock"
	"github.com/hackgods/carehub/internal/profile"
	"github.com/hackgods/carehub/internal/provider"
)

const testAdmin identity.Caller = "admin"

type testServer struct {
	t        *testing.T
	handler  http.Handler
	verifier *identity.Verifier
}

func newTestServer(t *testing.T, limiter *RateLimiter) *testServer {
	t.Helper()

	locker := lock.NewLocal()
	roles := access.NewRegistry(access.NewMemoryRepository(), locker, testAdmin)
	guard := roles.Guard()
	profiles := profile.NewMemoryRepository()
	providers := provider.NewService(provider.NewMemoryRepository(), guard, locker)
	verifier := identity.NewVerifier([]byte("test-secret"), "", "")

	handler := NewRouter(RouterConfig{
		Roles:         roles,
		Profiles:      profile.NewService(profiles, guard, locker),
		Entitlements:  profile.NewEntitlements(profiles, guard, locker),
		Providers:     providers,
		Consultations: consultation.NewService(consultation.NewMemoryRepository(), providers, guard, locker),
		Fitness:       catalog.NewFitnessService(catalog.NewMemoryRepository[catalog.FitnessListing](), guard, locker),
		Memberships:   catalog.NewMembershipService(catalog.NewMemoryRepository[catalog.MembershipPlan](), guard, locker),
		Verifier:      verifier,
		Limiter:       limiter,
		Env:           "test",
	})

	return &testServer{t: t, handler: handler, verifier: verifier}
}

// do sends a request as caller; the anonymous caller sends no token.
func (s *testServer) do(caller identity.Caller, method, path string, body any) *httptest.ResponseRecorder {
	s.t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			s.t.Fatal(err)
		}
	}

	req := httptest.NewRequest(method, path, &buf)
	if !caller.IsAnonymous() {
		token, err := s.verifier.Issue(caller, time.Hour)
		if err != nil {
			s.t.Fatal(err)
		}
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	s.handler.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(w.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode %q: %v", w.Body.String(), err)
	}
	return v
}

func expectStatus(t *testing.T, w *httptest.ResponseRecorder, want int) {
	t.Helper()
	if w.Code != want {
		t.Fatalf("status = %d, want %d (body %s)", w.Code, want, w.Body.String())
	}
}

var testProvider = ProviderDTO{
	ID:             "p1",
	Name:           "Dr. A",
	Specialization: "nutrition",
	Location:       "NYC",
	Online:         true,
}

func TestConsultationScenario(t *testing.T) {
	s := newTestServer(t, nil)

	expectStatus(t, s.do(testAdmin, http.MethodPost, "/api/v1/providers", testProvider), http.StatusCreated)

	w := s.do("u1", http.MethodPost, "/api/v1/consultations", CreateConsultationRequest{
		PatientID:  "u1",
		ProviderID: "p1",
		Time:       1_700_000_000_000_000_000,
		Modality:   "online",
	})
	expectStatus(t, w, http.StatusCreated)
	id := decode[CreatedResponse](t, w).ID

	w = s.do(testAdmin, http.MethodPut, "/api/v1/consultations/"+id+"/status", UpdateStatusRequest{Status: "confirmed"})
	expectStatus(t, w, http.StatusOK)

	w = s.do("u1", http.MethodGet, "/api/v1/consultations", nil)
	expectStatus(t, w, http.StatusOK)
	list := decode[[]ConsultationResponse](t, w)
	if len(list) != 1 || list[0].ID != id || list[0].Status != "confirmed" {
		t.Fatalf("u1 sees %+v, want one confirmed consultation", list)
	}

	w = s.do("u1", http.MethodGet, "/api/v1/consultations/"+id+"/events", nil)
	expectStatus(t, w, http.StatusOK)
	if events := decode[[]EventResponse](t, w); len(events) != 2 {
		t.Errorf("len(events) = %d, want 2", len(events))
	}
}

func TestConsultationErrors(t *testing.T) {
	s := newTestServer(t, nil)
	expectStatus(t, s.do(testAdmin, http.MethodPost, "/api/v1/providers", testProvider), http.StatusCreated)

	req := CreateConsultationRequest{ProviderID: "p1", Time: 1, Modality: "video"}

	unknown := req
	unknown.ProviderID = "nope"
	expectStatus(t, s.do("u1", http.MethodPost, "/api/v1/consultations", unknown), http.StatusNotFound)

	other := req
	other.PatientID = "u2"
	expectStatus(t, s.do("u1", http.MethodPost, "/api/v1/consultations", other), http.StatusForbidden)

	expectStatus(t, s.do(identity.Anonymous, http.MethodPost, "/api/v1/consultations", req), http.StatusUnauthorized)

	w := s.do("u1", http.MethodPost, "/api/v1/consultations", req)
	expectStatus(t, w, http.StatusCreated)
	id := decode[CreatedResponse](t, w).ID

	path := "/api/v1/consultations/" + id + "/status"
	expectStatus(t, s.do("u1", http.MethodPut, path, UpdateStatusRequest{Status: "confirmed"}), http.StatusForbidden)
	expectStatus(t, s.do(testAdmin, http.MethodPut, path, UpdateStatusRequest{Status: "completed"}), http.StatusConflict)
	expectStatus(t, s.do(testAdmin, http.MethodPut, path, UpdateStatusRequest{Status: "archived"}), http.StatusBadRequest)
	expectStatus(t, s.do(testAdmin, http.MethodPut, "/api/v1/consultations/missing/status", UpdateStatusRequest{Status: "confirmed"}), http.StatusNotFound)
	expectStatus(t, s.do("u2", http.MethodGet, "/api/v1/consultations/"+id, nil), http.StatusForbidden)
}

func TestRoleEndpoints(t *testing.T) {
	s := newTestServer(t, nil)

	w := s.do(identity.Anonymous, http.MethodGet, "/api/v1/me/role", nil)
	expectStatus(t, w, http.StatusOK)
	if got := decode[RoleResponse](t, w).Role; got != "guest" {
		t.Errorf("anonymous role = %q, want guest", got)
	}

	w = s.do("u1", http.MethodGet, "/api/v1/me/admin", nil)
	expectStatus(t, w, http.StatusOK)
	if decode[AdminResponse](t, w).IsAdmin {
		t.Error("u1 is admin before assignment")
	}

	expectStatus(t, s.do("u1", http.MethodPut, "/api/v1/roles/u1", AssignRoleRequest{Role: "admin"}), http.StatusForbidden)
	expectStatus(t, s.do(testAdmin, http.MethodPut, "/api/v1/roles/u1", AssignRoleRequest{Role: "wizard"}), http.StatusBadRequest)
	expectStatus(t, s.do(testAdmin, http.MethodPut, "/api/v1/roles/u1", AssignRoleRequest{Role: "admin"}), http.StatusOK)

	w = s.do("u1", http.MethodGet, "/api/v1/me/admin", nil)
	if !decode[AdminResponse](t, w).IsAdmin {
		t.Error("u1 not admin after assignment")
	}
}

func TestProfileEndpoints(t *testing.T) {
	s := newTestServer(t, nil)

	w := s.do("u1", http.MethodGet, "/api/v1/me/profile", nil)
	expectStatus(t, w, http.StatusOK)
	if body := bytes.TrimSpace(w.Body.Bytes()); string(body) != "null" {
		t.Errorf("empty profile body = %s, want null", body)
	}
	expectStatus(t, s.do("u1", http.MethodGet, "/api/v1/patients/me", nil), http.StatusNotFound)

	in := ProfileRequest{Name: "Ada", Age: 36, Description: "runner"}
	expectStatus(t, s.do("u1", http.MethodPut, "/api/v1/me/profile", in), http.StatusOK)

	bad := in
	bad.Age = 131
	expectStatus(t, s.do("u1", http.MethodPut, "/api/v1/me/profile", bad), http.StatusBadRequest)

	forged := in
	forged.ID = "u2"
	expectStatus(t, s.do("u1", http.MethodPut, "/api/v1/patients/me", forged), http.StatusForbidden)

	w = s.do("u1", http.MethodGet, "/api/v1/patients/me", nil)
	expectStatus(t, w, http.StatusOK)
	if got := decode[ProfileResponse](t, w); got.ID != "u1" || got.Name != "Ada" || got.IsVIP {
		t.Errorf("profile = %+v", got)
	}

	expectStatus(t, s.do("u2", http.MethodGet, "/api/v1/users/u1/profile", nil), http.StatusForbidden)
	expectStatus(t, s.do(testAdmin, http.MethodGet, "/api/v1/users/u1/profile", nil), http.StatusOK)
	expectStatus(t, s.do(testAdmin, http.MethodGet, "/api/v1/users/u9/profile", nil), http.StatusNotFound)
}

func TestVIPEndpoints(t *testing.T) {
	s := newTestServer(t, nil)

	expectStatus(t, s.do(testAdmin, http.MethodPut, "/api/v1/patients/u1/vip", SetVIPRequest{IsVIP: true}), http.StatusNotFound)
	expectStatus(t, s.do("u1", http.MethodPut, "/api/v1/me/profile", ProfileRequest{Name: "Ada", Age: 36}), http.StatusOK)
	expectStatus(t, s.do("u1", http.MethodPut, "/api/v1/patients/u1/vip", SetVIPRequest{IsVIP: true}), http.StatusForbidden)
	expectStatus(t, s.do(testAdmin, http.MethodPut, "/api/v1/patients/u1/vip", SetVIPRequest{IsVIP: true}), http.StatusOK)

	w := s.do("u1", http.MethodGet, "/api/v1/me/vip", nil)
	expectStatus(t, w, http.StatusOK)
	if !decode[VIPResponse](t, w).IsVIP {
		t.Error("IsVIP = false after admin grant")
	}
}

func TestCatalogEndpoints(t *testing.T) {
	s := newTestServer(t, nil)

	first := FitnessListingDTO{ID: "f1", Name: "Yoga", TypeOfClass: "yoga", Location: "Studio 1", Cost: 12.5, Duration: 60}
	second := FitnessListingDTO{ID: "f2", Name: "Spin", Cost: 10, Duration: 45}

	expectStatus(t, s.do("u1", http.MethodPost, "/api/v1/fitness-listings", first), http.StatusForbidden)
	expectStatus(t, s.do(testAdmin, http.MethodPost, "/api/v1/fitness-listings", first), http.StatusCreated)
	expectStatus(t, s.do(testAdmin, http.MethodPost, "/api/v1/fitness-listings", second), http.StatusCreated)
	expectStatus(t, s.do(testAdmin, http.MethodPost, "/api/v1/fitness-listings", first), http.StatusBadRequest)

	updated := first
	updated.ID = ""
	updated.Name = "Hot Yoga"
	expectStatus(t, s.do(testAdmin, http.MethodPut, "/api/v1/fitness-listings/f1", updated), http.StatusOK)
	expectStatus(t, s.do(testAdmin, http.MethodPut, "/api/v1/fitness-listings/f1", second), http.StatusBadRequest)
	expectStatus(t, s.do(testAdmin, http.MethodPut, "/api/v1/fitness-listings/f9", updated), http.StatusNotFound)

	w := s.do(identity.Anonymous, http.MethodGet, "/api/v1/fitness-listings", nil)
	expectStatus(t, w, http.StatusOK)
	list := decode[[]FitnessListingDTO](t, w)
	if len(list) != 2 || list[0].ID != "f1" || list[0].Name != "Hot Yoga" || list[1].ID != "f2" {
		t.Fatalf("list = %+v, want f1 (updated) then f2", list)
	}

	expectStatus(t, s.do(testAdmin, http.MethodDelete, "/api/v1/fitness-listings/f1", nil), http.StatusNoContent)
	expectStatus(t, s.do(testAdmin, http.MethodDelete, "/api/v1/fitness-listings/f1", nil), http.StatusNotFound)

	plan := MembershipPlanDTO{ID: "m1", Name: "Gold", Price: 49, Duration: 30}
	expectStatus(t, s.do(testAdmin, http.MethodPost, "/api/v1/membership-plans", plan), http.StatusCreated)
	w = s.do(identity.Anonymous, http.MethodGet, "/api/v1/membership-plans/m1", nil)
	expectStatus(t, w, http.StatusOK)
	if got := decode[MembershipPlanDTO](t, w); got != plan {
		t.Errorf("plan = %+v, want %+v", got, plan)
	}
}

func TestProviderEndpoints(t *testing.T) {
	s := newTestServer(t, nil)

	expectStatus(t, s.do(identity.Anonymous, http.MethodPost, "/api/v1/providers", testProvider), http.StatusUnauthorized)
	expectStatus(t, s.do("u1", http.MethodPost, "/api/v1/providers", testProvider), http.StatusForbidden)
	expectStatus(t, s.do(testAdmin, http.MethodPost, "/api/v1/providers", testProvider), http.StatusCreated)
	expectStatus(t, s.do(testAdmin, http.MethodPost, "/api/v1/providers", testProvider), http.StatusBadRequest)

	w := s.do(identity.Anonymous, http.MethodGet, "/api/v1/providers/p1", nil)
	expectStatus(t, w, http.StatusOK)
	if got := decode[ProviderDTO](t, w); got != testProvider {
		t.Errorf("provider = %+v", got)
	}
	expectStatus(t, s.do(identity.Anonymous, http.MethodGet, "/api/v1/providers/p2", nil), http.StatusNotFound)
}

func TestRequestValidation(t *testing.T) {
	s := newTestServer(t, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/providers", bytes.NewBufferString(`{"id":`))
	w := httptest.NewRecorder()
	s.handler.ServeHTTP(w, req)
	expectStatus(t, w, http.StatusBadRequest)

	req = httptest.NewRequest(http.MethodGet, "/api/v1/me/role", nil)
	req.Header.Set("Authorization", "Bearer not-a-jwt")
	w = httptest.NewRecorder()
	s.handler.ServeHTTP(w, req)
	expectStatus(t, w, http.StatusUnauthorized)

	req = httptest.NewRequest(http.MethodGet, "/api/v1/me/role", nil)
	req.Header.Set("Authorization", "Basic dTE6cHc=")
	w = httptest.NewRecorder()
	s.handler.ServeHTTP(w, req)
	expectStatus(t, w, http.StatusUnauthorized)
}

func TestRequestIDEchoed(t *testing.T) {
	s := newTestServer(t, nil)

	req := httptest.NewRequest(http.MethodGet, "/health/live", nil)
	req.Header.Set("X-Request-ID", "req-42")
	w := httptest.NewRecorder()
	s.handler.ServeHTTP(w, req)

	expectStatus(t, w, http.StatusOK)
	if got := w.Header().Get("X-Request-ID"); got != "req-42" {
		t.Errorf("X-Request-ID = %q, want req-42", got)
	}
}

func TestReadinessWithoutExternalStores(t *testing.T) {
	s := newTestServer(t, nil)

	w := s.do(identity.Anonymous, http.MethodGet, "/health/ready", nil)
	expectStatus(t, w, http.StatusOK)
	if got := decode[ReadinessResponse](t, w); got.Status != "ok" || len(got.Dependencies) != 0 {
		t.Errorf("readiness = %+v", got)
	}
}

func TestRecoveryMiddleware(t *testing.T) {
	h := RecoveryMiddleware(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	expectStatus(t, w, http.StatusInternalServerError)
}
