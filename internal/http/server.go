package httpapi

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/example/ride-hailing/internal/auth"
	"github.com/example/ride-hailing/internal/chat"
	"github.com/example/ride-hailing/internal/config"
	"github.com/example/ride-hailing/internal/dispatch"
	"github.com/example/ride-hailing/internal/geo"
	"github.com/example/ride-hailing/internal/geocode"
	"github.com/example/ride-hailing/internal/ingest"
	"github.com/example/ride-hailing/internal/payments"
	"github.com/example/ride-hailing/internal/ride"
	"github.com/example/ride-hailing/internal/storage"
)

type Server struct {
	Auth     *auth.Manager
	Geocoder *geocode.Client
	Rides    *ride.Service
	Chat     *chat.Service
	Store    storage.Store
	Reg      *dispatch.Registry
	Geo      geo.Index
	Kafka    *ingest.KafkaProducer

	logger *slog.Logger
	mux    *mux.Router
}

// NewServer wires the whole API from config: Redis-backed geo index and
// Postgres store when configured, in-process fallbacks otherwise.
func NewServer(cfg config.ServerConfig, logger *slog.Logger) (*Server, error) {
	var index geo.Index
	if cfg.RedisAddr != "" {
		index = geo.NewRedisIndex(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisGeoKey)
	} else {
		index = geo.NewMemoryIndex()
	}

	var store storage.Store
	if cfg.PGDSN != "" {
		ps, err := storage.NewPostgresStore(cfg.PGDSN)
		if err != nil {
			return nil, err
		}
		store = ps
	} else {
		store = storage.NewMemoryStore()
	}

	var kp *ingest.KafkaProducer
	if len(cfg.KafkaBrokers) > 0 {
		kp = ingest.NewKafkaProducer(cfg.KafkaBrokers, cfg.KafkaTopic)
	}

	geocoder := geocode.New(cfg.GeocodeBaseURL, cfg.GeocodeAPIKey)
	geocoder.Cache = geocode.NewCache(cfg.GeocodeCacheTTL)

	reg := dispatch.NewRegistry()

	var holder ride.PaymentHolder
	if sc := payments.NewStripeClient(cfg.StripeAPIKey); sc != nil {
		holder = sc
	}

	rides := &ride.Service{
		Geocoder:     geocoder,
		Captains:     index,
		Push:         reg,
		Fanout:       dispatch.NewBroadcaster(reg, logger),
		Users:        store,
		Rides:        store,
		Bookings:     store,
		Notifs:       store,
		Payments:     holder,
		Log:          logger,
		SearchRadius: cfg.SearchRadiusMeters,
		NearbyLimit:  cfg.NearbyLimit,
	}

	s := &Server{
		Auth:     auth.NewManager(cfg.JWTSecret, cfg.TokenTTL),
		Geocoder: geocoder,
		Rides:    rides,
		Chat:     &chat.Service{Store: store, Push: reg, Log: logger},
		Store:    store,
		Reg:      reg,
		Geo:      index,
		Kafka:    kp,
		logger:   logger,
		mux:      mux.NewRouter(),
	}
	s.registerMiddleware()
	s.routes()
	return s, nil
}

func (s *Server) routes() {
	s.mux.HandleFunc("/maps/coordinates", s.handleCoordinates).Methods("GET")
	s.mux.HandleFunc("/maps/distance-time", s.handleDistanceTime).Methods("GET")
	s.mux.HandleFunc("/maps/suggestions", s.handleSuggestions).Methods("GET")

	s.mux.HandleFunc("/users/register", s.handleRegister).Methods("POST")
	s.mux.HandleFunc("/users/login", s.handleLogin).Methods("POST")
	s.mux.HandleFunc("/rides/search", s.handleSearchRides).Methods("GET")

	authed := s.mux.NewRoute().Subrouter()
	authed.Use(s.authMiddleware)
	authed.HandleFunc("/users/logout", s.handleLogout).Methods("GET")
	authed.HandleFunc("/users/profile", s.handleProfile).Methods("GET")
	authed.HandleFunc("/users/profile/update", s.handleProfileUpdate).Methods("PUT")
	authed.HandleFunc("/rides/create", s.handleCreateRide).Methods("POST")
	authed.HandleFunc("/rides/{id}/accept", s.handleAcceptRide).Methods("POST")
	authed.HandleFunc("/rides/{id}/start", s.handleStartRide).Methods("POST")
	authed.HandleFunc("/rides/{id}/complete", s.handleCompleteRide).Methods("POST")
	authed.HandleFunc("/rides/{id}/cancel", s.handleCancelRide).Methods("POST")
	authed.HandleFunc("/rides/{id}/book", s.handleBookRide).Methods("POST")
	authed.HandleFunc("/rides/{id}/bookings", s.handleRideBookings).Methods("GET")
	authed.HandleFunc("/bookings/{id}/confirm", s.handleConfirmBooking).Methods("POST")
	authed.HandleFunc("/bookings/{id}/cancel", s.handleCancelBooking).Methods("POST")
	authed.HandleFunc("/messages/send/{receiverId}", s.handleSendMessage).Methods("POST")
	authed.HandleFunc("/messages/{receiverId}", s.handleMessages).Methods("GET")
	authed.HandleFunc("/notifications", s.handleNotifications).Methods("GET")
	authed.HandleFunc("/notifications/mark-as-read", s.handleMarkNotificationsRead).Methods("PUT")
	authed.HandleFunc("/internal/captains/location", s.handleCaptainLocation).Methods("POST")

	s.mux.HandleFunc("/ws", s.handleWS)
	s.mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200); w.Write([]byte("ok")) }).Methods("GET")
	s.mux.Handle("/metrics", promhttp.Handler())
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) { s.mux.ServeHTTP(w, r) }
