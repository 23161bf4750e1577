package postgres

import (
	"database/sql"
	"fmt"
	"log"

	"github.com/gateon/ticketing/config"

	_ "github.com/lib/pq"
)

func NewPostgresDB(cfg *config.DatabaseConfig) (*sql.DB, error) {
	connStr := fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.DBName, cfg.SSLMode,
	)

	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	log.Println("Successfully connected to PostgreSQL")
	return db, nil
}

func RunMigrations(db *sql.DB) error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS events (
			id SERIAL PRIMARY KEY,
			title VARCHAR(255) NOT NULL,
			description TEXT,
			date TIMESTAMP NOT NULL,
			location VARCHAR(255),
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`,

		// capacity = 0 означает билет без контроля вместимости
		`CREATE TABLE IF NOT EXISTS tickets (
			id SERIAL PRIMARY KEY,
			event_id INTEGER NOT NULL REFERENCES events(id),
			label VARCHAR(255) NOT NULL,
			unit_price BIGINT NOT NULL CHECK (unit_price >= 0),
			capacity INTEGER NOT NULL DEFAULT 0 CHECK (capacity >= 0),
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`,

		`CREATE TABLE IF NOT EXISTS promo_codes (
			id SERIAL PRIMARY KEY,
			code VARCHAR(64) NOT NULL,
			kind VARCHAR(20) NOT NULL,
			value BIGINT NOT NULL CHECK (value > 0),
			active BOOLEAN NOT NULL DEFAULT TRUE,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`,

		// Цена брони заморожена в момент создания, поэтому колонки расчета
		// хранятся прямо в строке брони
		`CREATE TABLE IF NOT EXISTS bookings (
			id UUID PRIMARY KEY,
			ticket_code VARCHAR(32) UNIQUE NOT NULL,
			event_id INTEGER NOT NULL REFERENCES events(id),
			ticket_id INTEGER NOT NULL REFERENCES tickets(id),
			quantity INTEGER NOT NULL CHECK (quantity > 0),
			attendee_name VARCHAR(255) NOT NULL,
			attendee_email VARCHAR(255) NOT NULL,
			attendee_phone VARCHAR(32) NOT NULL,
			unit_price BIGINT NOT NULL,
			base_total BIGINT NOT NULL,
			promo_discount BIGINT NOT NULL DEFAULT 0,
			group_discount BIGINT NOT NULL DEFAULT 0,
			total_discount BIGINT NOT NULL DEFAULT 0,
			total BIGINT NOT NULL CHECK (total >= 0),
			promo_code VARCHAR(64),
			delivery VARCHAR(20) NOT NULL DEFAULT 'email',
			status VARCHAR(20) NOT NULL DEFAULT 'confirmed',
			checked_in_at TIMESTAMP,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`,

		// Indexes
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_promo_codes_active_code ON promo_codes(code) WHERE active`,
		`CREATE INDEX IF NOT EXISTS idx_tickets_event_id ON tickets(event_id)`,
		`CREATE INDEX IF NOT EXISTS idx_bookings_event_id ON bookings(event_id)`,
		`CREATE INDEX IF NOT EXISTS idx_bookings_status ON bookings(status)`,
		`CREATE INDEX IF NOT EXISTS idx_bookings_attendee_email ON bookings(attendee_email)`,
		`CREATE INDEX IF NOT EXISTS idx_bookings_event_ticket_status ON bookings(event_id, ticket_id, status)`,
	}

	for _, migration := range migrations {
		if _, err := db.Exec(migration); err != nil {
			return fmt.Errorf("failed to execute migration: %v", err)
		}
	}

	log.Println("Database migrations completed successfully")
	return nil
}
