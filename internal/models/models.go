package models

import "time"

type Coord struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

type Role string

const (
	RolePassenger Role = "passenger"
	RoleCaptain   Role = "captain"
	RoleBoth      Role = "both"
)

// CanDrive reports whether this role may publish or accept rides.
func (r Role) CanDrive() bool { return r == RoleCaptain || r == RoleBoth }

type VehicleClass string

const (
	ClassAuto VehicleClass = "auto"
	ClassCar  VehicleClass = "car"
	ClassBike VehicleClass = "bike"
)

type Vehicle struct {
	Type  VehicleClass `json:"type"`
	Model string       `json:"model"`
	Plate string       `json:"plate"`
	Seats int          `json:"seats"`
}

type Review struct {
	RaterID   string    `json:"raterId"`
	Rating    float64   `json:"rating"`
	Comment   string    `json:"comment,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

type User struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	Phone        string    `json:"phone"`
	PasswordHash string    `json:"-"`
	Role         Role      `json:"role"`
	Vehicle      *Vehicle  `json:"vehicle,omitempty"`
	Location     *Coord    `json:"location,omitempty"`
	Rating       float64   `json:"rating"`
	Reviews      []Review  `json:"reviews,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// Summary strips a user down to the identity fields safe to embed in
// another party's payload.
func (u *User) Summary() UserSummary {
	return UserSummary{ID: u.ID, Name: u.Name, Email: u.Email, Phone: u.Phone}
}

type UserSummary struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

type RideType string

const (
	RideInstant   RideType = "instant"
	RideScheduled RideType = "scheduled"
	RideRecurring RideType = "recurring"
)

type Ride struct {
	ID              string               `json:"id"`
	UserID          string               `json:"userId"`
	CaptainID       string               `json:"captainId,omitempty"`
	Origin          string               `json:"origin"`
	Destination     string               `json:"destination"`
	OriginCoord     Coord                `json:"originCoord"`
	DestCoord       Coord                `json:"destCoord"`
	DistanceMeters  int                  `json:"distance"`
	DurationSeconds int                  `json:"duration"`
	Fare            map[VehicleClass]int `json:"fare"`
	VehicleClass    VehicleClass         `json:"vehicleClass"`
	SeatsBooked     int                  `json:"seatsBooked"`
	TotalSeats      int                  `json:"totalSeats"`
	RideType        RideType             `json:"rideType"`
	Status          RideStatus           `json:"status"`
	OTP             string               `json:"-"`
	DepartureTime   *time.Time           `json:"departureTime,omitempty"`
	CreatedAt       time.Time            `json:"createdAt"`
	UpdatedAt       time.Time            `json:"updatedAt"`
}

// RideDetail is the ride-creation response shape: the persisted ride joined
// with the requester's identity, plus the operational fields (OTP, the fare
// for the class the rider picked) that only the two parties should see.
type RideDetail struct {
	Ride
	Requester    UserSummary `json:"user"`
	StartCode    string      `json:"otp"`
	SelectedFare int         `json:"selectedFare"`
}

type BookingStatus string

const (
	BookingPending   BookingStatus = "pending"
	BookingConfirmed BookingStatus = "confirmed"
	BookingCanceled  BookingStatus = "canceled"
)

type Booking struct {
	ID          string        `json:"id"`
	RideID      string        `json:"rideId"`
	PassengerID string        `json:"passengerId"`
	Seats       int           `json:"seats"`
	Status      BookingStatus `json:"status"`
	StartOTP    string        `json:"-"`
	EndOTP      string        `json:"-"`
	CreatedAt   time.Time     `json:"createdAt"`
}

type Conversation struct {
	ID           string    `json:"id"`
	Participants []string  `json:"participants"` // exactly two user ids
	CreatedAt    time.Time `json:"createdAt"`
}

type Message struct {
	ID             string    `json:"id"`
	ConversationID string    `json:"conversationId"`
	SenderID       string    `json:"senderId"`
	ReceiverID     string    `json:"receiverId"`
	Body           string    `json:"body"`
	CreatedAt      time.Time `json:"createdAt"`
}

type Notification struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	Message   string    `json:"message"`
	RideID    string    `json:"rideId,omitempty"`
	Type      string    `json:"type"`
	IsRead    bool      `json:"isRead"`
	CreatedAt time.Time `json:"createdAt"`
}

// Captain is the slim presence record kept in the geo index: who, where,
// and whether they are currently accepting rides.
type Captain struct {
	ID      string    `json:"id"`
	Loc     Coord     `json:"loc"`
	Rating  float64   `json:"rating"`
	Online  bool      `json:"online"`
	Updated time.Time `json:"updated"`
}
