package httpapi

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/example/ride-hailing/internal/config"
	"github.com/example/ride-hailing/internal/logging"
)

// fakeProvider serves geocode search/autocomplete and the matrix endpoint.
func fakeProvider() *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.HasPrefix(r.URL.Path, "/geocode/search"):
			if strings.Contains(r.URL.RawQuery, "Nowhere") {
				w.Write([]byte(`{"features":[]}`))
				return
			}
			w.Write([]byte(`{"features":[{"geometry":{"coordinates":[77.59,12.97]},"properties":{"label":"Somewhere"}}]}`))
		case strings.HasPrefix(r.URL.Path, "/geocode/autocomplete"):
			w.Write([]byte(`{"features":[{"properties":{"label":"Somewhere, City"}}]}`))
		case strings.HasPrefix(r.URL.Path, "/v2/matrix"):
			w.Write([]byte(`{"distances":[[0,5000],[5000,0]],"durations":[[0,600],[600,0]]}`))
		default:
			http.NotFound(w, r)
		}
	}))
}

func newTestServer(t *testing.T) (*Server, *httptest.Server) {
	t.Helper()
	provider := fakeProvider()
	t.Cleanup(provider.Close)
	cfg := config.ServerConfig{
		GeocodeBaseURL:     provider.URL,
		GeocodeCacheTTL:    time.Minute,
		JWTSecret:          "test-secret",
		TokenTTL:           time.Hour,
		SearchRadiusMeters: 5000,
		NearbyLimit:        20,
	}
	srv, err := NewServer(cfg, logging.NewLogger("error"))
	if err != nil {
		t.Fatalf("new server: %v", err)
	}
	return srv, provider
}

func doJSON(t *testing.T, srv *Server, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	return rec
}

func register(t *testing.T, srv *Server, email, role string) (token string) {
	t.Helper()
	body := map[string]any{"name": "Test User", "email": email, "password": "secret123", "role": role}
	if role == "captain" || role == "both" {
		body["vehicle"] = map[string]any{"type": "car", "model": "WagonR", "plate": "KA01", "seats": 4}
	}
	rec := doJSON(t, srv, "POST", "/users/register", "", body)
	if rec.Code != http.StatusCreated {
		t.Fatalf("register: status %d body %s", rec.Code, rec.Body.String())
	}
	var out struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil || out.Token == "" {
		t.Fatalf("register response missing token: %s", rec.Body.String())
	}
	return out.Token
}

func TestRegisterLoginProfileFlow(t *testing.T) {
	srv, _ := newTestServer(t)
	register(t, srv, "rider@example.com", "passenger")

	rec := doJSON(t, srv, "POST", "/users/login", "", map[string]string{
		"email": "rider@example.com", "password": "secret123",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("login: status %d body %s", rec.Code, rec.Body.String())
	}
	var out struct {
		Token string `json:"token"`
	}
	_ = json.Unmarshal(rec.Body.Bytes(), &out)

	rec = doJSON(t, srv, "GET", "/users/profile", out.Token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("profile: status %d", rec.Code)
	}

	rec = doJSON(t, srv, "POST", "/users/login", "", map[string]string{
		"email": "rider@example.com", "password": "wrong",
	})
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("bad password: want 401, got %d", rec.Code)
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	srv, _ := newTestServer(t)
	register(t, srv, "dup@example.com", "passenger")
	rec := doJSON(t, srv, "POST", "/users/register", "", map[string]any{
		"name": "Other", "email": "dup@example.com", "password": "secret123",
	})
	if rec.Code != http.StatusConflict {
		t.Fatalf("duplicate email: want 409, got %d", rec.Code)
	}
}

func TestCreateRideEndToEnd(t *testing.T) {
	srv, _ := newTestServer(t)
	token := register(t, srv, "rider@example.com", "passenger")

	rec := doJSON(t, srv, "POST", "/rides/create", token, map[string]any{
		"origin": "Downtown", "destination": "Airport", "vehicleType": "car",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create ride: status %d body %s", rec.Code, rec.Body.String())
	}
	var out struct {
		Ride struct {
			Distance int            `json:"distance"`
			Duration int            `json:"duration"`
			Fare     map[string]int `json:"fare"`
			Status   string         `json:"status"`
			OTP      string         `json:"otp"`
		} `json:"ride"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if out.Ride.Distance != 5000 || out.Ride.Duration != 600 {
		t.Errorf("distance/duration mismatch: %+v", out.Ride)
	}
	if out.Ride.Fare["car"] != 135 {
		t.Errorf("expected car fare 135 for 5km/10min, got %d", out.Ride.Fare["car"])
	}
	if out.Ride.Status != "searching" {
		t.Errorf("expected searching, got %s", out.Ride.Status)
	}
	if len(out.Ride.OTP) != 6 {
		t.Errorf("expected 6-digit otp in response, got %q", out.Ride.OTP)
	}
}

func TestCreateRideRequiresAuth(t *testing.T) {
	srv, _ := newTestServer(t)
	rec := doJSON(t, srv, "POST", "/rides/create", "", map[string]any{
		"origin": "Downtown", "destination": "Airport",
	})
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("want 401, got %d", rec.Code)
	}
}

func TestCreateRideUnknownPlace(t *testing.T) {
	srv, _ := newTestServer(t)
	token := register(t, srv, "rider@example.com", "passenger")
	rec := doJSON(t, srv, "POST", "/rides/create", token, map[string]any{
		"origin": "Nowhere", "destination": "Airport",
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("unresolvable origin: want 400, got %d body %s", rec.Code, rec.Body.String())
	}
}

func TestMapsEndpoints(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := doJSON(t, srv, "GET", "/maps/coordinates?address=Downtown", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("coordinates: %d", rec.Code)
	}
	var coord struct{ Lat, Lng float64 }
	_ = json.Unmarshal(rec.Body.Bytes(), &coord)
	if coord.Lat != 12.97 || coord.Lng != 77.59 {
		t.Errorf("coordinates mismatch: %+v", coord)
	}

	rec = doJSON(t, srv, "GET", "/maps/coordinates?address=Nowhere", "", nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("unknown address: want 404, got %d", rec.Code)
	}

	rec = doJSON(t, srv, "GET", "/maps/suggestions?input=Some", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("suggestions: %d", rec.Code)
	}
	var labels []string
	_ = json.Unmarshal(rec.Body.Bytes(), &labels)
	if len(labels) != 1 || labels[0] != "Somewhere, City" {
		t.Errorf("suggestions mismatch: %v", labels)
	}

	rec = doJSON(t, srv, "GET", "/maps/distance-time?origin=A&destination=B", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("distance-time: %d", rec.Code)
	}
}

func TestMessagingAndNotifications(t *testing.T) {
	srv, _ := newTestServer(t)
	riderToken := register(t, srv, "rider@example.com", "passenger")

	// look up the rider's id via profile
	rec := doJSON(t, srv, "GET", "/users/profile", riderToken, nil)
	var prof struct {
		User struct {
			ID string `json:"id"`
		} `json:"user"`
	}
	_ = json.Unmarshal(rec.Body.Bytes(), &prof)

	capToken := register(t, srv, "cap@example.com", "captain")
	rec = doJSON(t, srv, "POST", "/messages/send/"+prof.User.ID, capToken, map[string]string{
		"message": "on my way",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("send message: %d body %s", rec.Code, rec.Body.String())
	}

	rec = doJSON(t, srv, "GET", "/messages/"+prof.User.ID, capToken, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("history: %d", rec.Code)
	}
	var hist struct {
		Messages []struct {
			Body string `json:"body"`
		} `json:"messages"`
	}
	_ = json.Unmarshal(rec.Body.Bytes(), &hist)
	if len(hist.Messages) != 1 || hist.Messages[0].Body != "on my way" {
		t.Fatalf("history mismatch: %+v", hist)
	}

	rec = doJSON(t, srv, "GET", "/notifications", riderToken, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("notifications: %d", rec.Code)
	}
	rec = doJSON(t, srv, "PUT", "/notifications/mark-as-read", riderToken, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("mark-as-read: %d", rec.Code)
	}
}

func TestCaptainLocationIngest(t *testing.T) {
	srv, _ := newTestServer(t)
	capToken := register(t, srv, "cap@example.com", "captain")
	riderToken := register(t, srv, "rider@example.com", "passenger")

	rec := doJSON(t, srv, "POST", "/internal/captains/location", capToken, map[string]float64{
		"lat": 12.97, "lng": 77.59,
	})
	if rec.Code != http.StatusNoContent {
		t.Fatalf("captain location: want 204, got %d", rec.Code)
	}

	rec = doJSON(t, srv, "POST", "/internal/captains/location", riderToken, map[string]float64{
		"lat": 12.97, "lng": 77.59,
	})
	if rec.Code != http.StatusForbidden {
		t.Fatalf("passenger location: want 403, got %d", rec.Code)
	}
}
