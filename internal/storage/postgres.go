package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"github.com/lib/pq"

	"github.com/example/ride-hailing/internal/models"
)

// PostgresStore implements Store on database/sql. Structured fields (vehicle,
// reviews, fare map) are kept as JSONB columns; everything queried on gets
// its own column.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(dsn string) (*PostgresStore, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		return nil, err
	}
	return &PostgresStore{db: db}, nil
}

func (p *PostgresStore) Close() error { return p.db.Close() }

// DB exposes the underlying handle for boot-time migration runs.
func (p *PostgresStore) DB() *sql.DB { return p.db }

func (p *PostgresStore) CreateUser(ctx context.Context, u *models.User) error {
	vehicle, _ := json.Marshal(u.Vehicle)
	location, _ := json.Marshal(u.Location)
	reviews, _ := json.Marshal(u.Reviews)
	_, err := p.db.ExecContext(ctx, `
		INSERT INTO users(id, name, email, phone, password_hash, role, vehicle, location, rating, reviews, created_at, updated_at)
		VALUES($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)`,
		u.ID, u.Name, u.Email, u.Phone, u.PasswordHash, u.Role, vehicle, location, u.Rating, reviews, u.CreatedAt, u.UpdatedAt)
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == "23505" {
		return ErrDuplicate
	}
	return err
}

func (p *PostgresStore) UserByID(ctx context.Context, id string) (*models.User, error) {
	return p.scanUser(p.db.QueryRowContext(ctx, `
		SELECT id, name, email, phone, password_hash, role, vehicle, location, rating, reviews, created_at, updated_at
		FROM users WHERE id=$1`, id))
}

func (p *PostgresStore) UserByEmail(ctx context.Context, email string) (*models.User, error) {
	return p.scanUser(p.db.QueryRowContext(ctx, `
		SELECT id, name, email, phone, password_hash, role, vehicle, location, rating, reviews, created_at, updated_at
		FROM users WHERE lower(email)=lower($1)`, email))
}

func (p *PostgresStore) scanUser(row *sql.Row) (*models.User, error) {
	var u models.User
	var vehicle, location, reviews []byte
	err := row.Scan(&u.ID, &u.Name, &u.Email, &u.Phone, &u.PasswordHash, &u.Role,
		&vehicle, &location, &u.Rating, &reviews, &u.CreatedAt, &u.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	_ = json.Unmarshal(vehicle, &u.Vehicle)
	_ = json.Unmarshal(location, &u.Location)
	_ = json.Unmarshal(reviews, &u.Reviews)
	return &u, nil
}

func (p *PostgresStore) UpdateUser(ctx context.Context, u *models.User) error {
	vehicle, _ := json.Marshal(u.Vehicle)
	location, _ := json.Marshal(u.Location)
	reviews, _ := json.Marshal(u.Reviews)
	res, err := p.db.ExecContext(ctx, `
		UPDATE users SET name=$1, phone=$2, role=$3, vehicle=$4, location=$5, rating=$6, reviews=$7, updated_at=$8
		WHERE id=$9`,
		u.Name, u.Phone, u.Role, vehicle, location, u.Rating, reviews, time.Now(), u.ID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (p *PostgresStore) CreateRide(ctx context.Context, r *models.Ride) error {
	fareJSON, _ := json.Marshal(r.Fare)
	_, err := p.db.ExecContext(ctx, `
		INSERT INTO rides(id, user_id, captain_id, origin, destination, origin_lat, origin_lng, dest_lat, dest_lng,
			distance_m, duration_s, fare, vehicle_class, seats_booked, total_seats, ride_type, status, otp,
			departure_time, created_at, updated_at)
		VALUES($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20,$21)`,
		r.ID, r.UserID, nullString(r.CaptainID), r.Origin, r.Destination,
		r.OriginCoord.Lat, r.OriginCoord.Lng, r.DestCoord.Lat, r.DestCoord.Lng,
		r.DistanceMeters, r.DurationSeconds, fareJSON, r.VehicleClass, r.SeatsBooked, r.TotalSeats,
		r.RideType, r.Status, r.OTP, r.DepartureTime, r.CreatedAt, r.UpdatedAt)
	return err
}

const rideColumns = `id, user_id, captain_id, origin, destination, origin_lat, origin_lng, dest_lat, dest_lng,
	distance_m, duration_s, fare, vehicle_class, seats_booked, total_seats, ride_type, status, otp,
	departure_time, created_at, updated_at`

func (p *PostgresStore) RideByID(ctx context.Context, id string) (*models.Ride, error) {
	rows, err := p.db.QueryContext(ctx, `SELECT `+rideColumns+` FROM rides WHERE id=$1`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	if !rows.Next() {
		return nil, ErrNotFound
	}
	return scanRide(rows)
}

func scanRide(rows *sql.Rows) (*models.Ride, error) {
	var r models.Ride
	var captainID sql.NullString
	var departure sql.NullTime
	var fareJSON []byte
	err := rows.Scan(&r.ID, &r.UserID, &captainID, &r.Origin, &r.Destination,
		&r.OriginCoord.Lat, &r.OriginCoord.Lng, &r.DestCoord.Lat, &r.DestCoord.Lng,
		&r.DistanceMeters, &r.DurationSeconds, &fareJSON, &r.VehicleClass, &r.SeatsBooked, &r.TotalSeats,
		&r.RideType, &r.Status, &r.OTP, &departure, &r.CreatedAt, &r.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if captainID.Valid {
		r.CaptainID = captainID.String
	}
	if departure.Valid {
		t := departure.Time
		r.DepartureTime = &t
	}
	_ = json.Unmarshal(fareJSON, &r.Fare)
	return &r, nil
}

func (p *PostgresStore) UpdateRide(ctx context.Context, r *models.Ride) error {
	res, err := p.db.ExecContext(ctx, `
		UPDATE rides SET captain_id=$1, status=$2, seats_booked=$3, updated_at=$4 WHERE id=$5`,
		nullString(r.CaptainID), r.Status, r.SeatsBooked, time.Now(), r.ID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (p *PostgresStore) SearchScheduled(ctx context.Context, origin, destination string, date time.Time) ([]models.Ride, error) {
	q := `SELECT ` + rideColumns + ` FROM rides
		WHERE ride_type <> 'instant' AND status = 'searching' AND departure_time IS NOT NULL`
	args := []any{}
	if origin != "" {
		args = append(args, "%"+origin+"%")
		q += ` AND origin ILIKE $` + itoa(len(args))
	}
	if destination != "" {
		args = append(args, "%"+destination+"%")
		q += ` AND destination ILIKE $` + itoa(len(args))
	}
	if !date.IsZero() {
		args = append(args, date)
		q += ` AND departure_time::date = $` + itoa(len(args)) + `::date`
	}
	q += ` ORDER BY departure_time ASC`
	rows, err := p.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []models.Ride
	for rows.Next() {
		r, err := scanRide(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *r)
	}
	return out, rows.Err()
}

func (p *PostgresStore) CreateBooking(ctx context.Context, b *models.Booking) error {
	_, err := p.db.ExecContext(ctx, `
		INSERT INTO bookings(id, ride_id, passenger_id, seats, status, start_otp, end_otp, created_at)
		VALUES($1,$2,$3,$4,$5,$6,$7,$8)`,
		b.ID, b.RideID, b.PassengerID, b.Seats, b.Status, b.StartOTP, b.EndOTP, b.CreatedAt)
	return err
}

func (p *PostgresStore) BookingByID(ctx context.Context, id string) (*models.Booking, error) {
	var b models.Booking
	err := p.db.QueryRowContext(ctx, `
		SELECT id, ride_id, passenger_id, seats, status, start_otp, end_otp, created_at
		FROM bookings WHERE id=$1`, id).
		Scan(&b.ID, &b.RideID, &b.PassengerID, &b.Seats, &b.Status, &b.StartOTP, &b.EndOTP, &b.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (p *PostgresStore) BookingsByRide(ctx context.Context, rideID string) ([]models.Booking, error) {
	rows, err := p.db.QueryContext(ctx, `
		SELECT id, ride_id, passenger_id, seats, status, start_otp, end_otp, created_at
		FROM bookings WHERE ride_id=$1 ORDER BY created_at ASC`, rideID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []models.Booking
	for rows.Next() {
		var b models.Booking
		if err := rows.Scan(&b.ID, &b.RideID, &b.PassengerID, &b.Seats, &b.Status, &b.StartOTP, &b.EndOTP, &b.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

func (p *PostgresStore) UpdateBooking(ctx context.Context, b *models.Booking) error {
	res, err := p.db.ExecContext(ctx, `UPDATE bookings SET seats=$1, status=$2 WHERE id=$3`,
		b.Seats, b.Status, b.ID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (p *PostgresStore) DeleteBooking(ctx context.Context, id string) error {
	res, err := p.db.ExecContext(ctx, `DELETE FROM bookings WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func orderPair(a, b string) (string, string) {
	if a > b {
		return b, a
	}
	return a, b
}

func (p *PostgresStore) ConversationBetween(ctx context.Context, a, b string) (*models.Conversation, error) {
	pa, pb := orderPair(a, b)
	var c models.Conversation
	var first, second string
	err := p.db.QueryRowContext(ctx, `
		SELECT id, participant_a, participant_b, created_at
		FROM conversations WHERE participant_a=$1 AND participant_b=$2`, pa, pb).
		Scan(&c.ID, &first, &second, &c.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	c.Participants = []string{first, second}
	return &c, nil
}

func (p *PostgresStore) CreateConversation(ctx context.Context, c *models.Conversation) error {
	pa, pb := orderPair(c.Participants[0], c.Participants[1])
	_, err := p.db.ExecContext(ctx, `
		INSERT INTO conversations(id, participant_a, participant_b, created_at) VALUES($1,$2,$3,$4)`,
		c.ID, pa, pb, c.CreatedAt)
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == "23505" {
		return ErrDuplicate
	}
	return err
}

func (p *PostgresStore) AppendMessage(ctx context.Context, m *models.Message) error {
	_, err := p.db.ExecContext(ctx, `
		INSERT INTO messages(id, conversation_id, sender_id, receiver_id, body, created_at)
		VALUES($1,$2,$3,$4,$5,$6)`,
		m.ID, m.ConversationID, m.SenderID, m.ReceiverID, m.Body, m.CreatedAt)
	return err
}

func (p *PostgresStore) MessagesBetween(ctx context.Context, a, b string) ([]models.Message, error) {
	rows, err := p.db.QueryContext(ctx, `
		SELECT id, conversation_id, sender_id, receiver_id, body, created_at FROM messages
		WHERE (sender_id=$1 AND receiver_id=$2) OR (sender_id=$2 AND receiver_id=$1)
		ORDER BY created_at ASC`, a, b)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []models.Message
	for rows.Next() {
		var m models.Message
		if err := rows.Scan(&m.ID, &m.ConversationID, &m.SenderID, &m.ReceiverID, &m.Body, &m.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (p *PostgresStore) CreateNotification(ctx context.Context, n *models.Notification) error {
	_, err := p.db.ExecContext(ctx, `
		INSERT INTO notifications(id, user_id, message, ride_id, type, is_read, created_at)
		VALUES($1,$2,$3,$4,$5,$6,$7)`,
		n.ID, n.UserID, n.Message, nullString(n.RideID), n.Type, n.IsRead, n.CreatedAt)
	return err
}

func (p *PostgresStore) NotificationsByUser(ctx context.Context, userID string) ([]models.Notification, error) {
	rows, err := p.db.QueryContext(ctx, `
		SELECT id, user_id, message, ride_id, type, is_read, created_at FROM notifications
		WHERE user_id=$1 ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []models.Notification
	for rows.Next() {
		var n models.Notification
		var rideID sql.NullString
		if err := rows.Scan(&n.ID, &n.UserID, &n.Message, &rideID, &n.Type, &n.IsRead, &n.CreatedAt); err != nil {
			return nil, err
		}
		if rideID.Valid {
			n.RideID = rideID.String
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

func (p *PostgresStore) MarkAllRead(ctx context.Context, userID string) error {
	_, err := p.db.ExecContext(ctx, `UPDATE notifications SET is_read=true WHERE user_id=$1`, userID)
	return err
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func itoa(n int) string { return strconv.Itoa(n) }
