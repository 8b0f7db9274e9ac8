package config

import (
	"database/sql"
	"fmt"
	"os"

	_ "github.com/lib/pq"
)

func InitDB() (*sql.DB, error) {
	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		return nil, fmt.Errorf("DATABASE_URL environment variable is required")
	}

	db, err := sql.Open("postgres", dbURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)

	return db, nil
}

func RunMigrations(db *sql.DB) error {
	migrations := []string{
		`CREATE EXTENSION IF NOT EXISTS "uuid-ossp"`,

		`CREATE TABLE IF NOT EXISTS users (
			id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
			email VARCHAR(255) UNIQUE NOT NULL,
			password_hash VARCHAR(255) NOT NULL,
			name VARCHAR(255) NOT NULL,
			avatar TEXT,
			totp_secret VARCHAR(255),
			totp_enabled BOOLEAN DEFAULT FALSE,
			email_verified BOOLEAN DEFAULT FALSE,
			created_at TIMESTAMP DEFAULT NOW(),
			updated_at TIMESTAMP DEFAULT NOW()
		)`,

		`CREATE TABLE IF NOT EXISTS sessions (
			id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
			user_id UUID REFERENCES users(id) ON DELETE CASCADE,
			refresh_token VARCHAR(500) UNIQUE NOT NULL,
			expires_at TIMESTAMP NOT NULL,
			created_at TIMESTAMP DEFAULT NOW()
		)`,

		`CREATE TABLE IF NOT EXISTS events (
			id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
			user_id UUID REFERENCES users(id) ON DELETE CASCADE,
			title VARCHAR(255) NOT NULL,
			description TEXT DEFAULT '',
			date TIMESTAMP NOT NULL,
			location VARCHAR(255) DEFAULT '',
			capacity INTEGER DEFAULT 0,
			status VARCHAR(20) DEFAULT 'draft',
			category VARCHAR(100) DEFAULT '',
			tags TEXT[] DEFAULT '{}',
			is_public BOOLEAN DEFAULT FALSE,
			dress_code TEXT DEFAULT '',
			additional_info TEXT DEFAULT '',
			image_url TEXT DEFAULT '',
			guest_count INTEGER DEFAULT 0,
			accepted_count INTEGER DEFAULT 0,
			declined_count INTEGER DEFAULT 0,
			pending_count INTEGER DEFAULT 0,
			maybe_count INTEGER DEFAULT 0,
			created_at TIMESTAMP DEFAULT NOW(),
			updated_at TIMESTAMP DEFAULT NOW()
		)`,

		`CREATE TABLE IF NOT EXISTS guests (
			id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
			user_id UUID REFERENCES users(id) ON DELETE CASCADE,
			event_id UUID REFERENCES events(id) ON DELETE CASCADE,
			name VARCHAR(255) NOT NULL,
			email VARCHAR(255) NOT NULL,
			phone VARCHAR(50) DEFAULT '',
			status VARCHAR(20) DEFAULT 'pending',
			invited_at TIMESTAMP DEFAULT NOW(),
			responded_at TIMESTAMP,
			plus_one_name VARCHAR(255) DEFAULT '',
			plus_one_email VARCHAR(255) DEFAULT '',
			dietary TEXT DEFAULT '',
			notes TEXT DEFAULT '',
			rsvp_token VARCHAR(255) UNIQUE NOT NULL,
			created_at TIMESTAMP DEFAULT NOW(),
			updated_at TIMESTAMP DEFAULT NOW()
		)`,

		`CREATE TABLE IF NOT EXISTS contacts (
			id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
			user_id UUID REFERENCES users(id) ON DELETE CASCADE,
			first_name VARCHAR(255) NOT NULL,
			last_name VARCHAR(255) DEFAULT '',
			email VARCHAR(255) DEFAULT '',
			phone VARCHAR(50) DEFAULT '',
			dietary TEXT DEFAULT '',
			notes TEXT DEFAULT '',
			tags TEXT[] DEFAULT '{}',
			created_at TIMESTAMP DEFAULT NOW(),
			updated_at TIMESTAMP DEFAULT NOW()
		)`,

		`CREATE TABLE IF NOT EXISTS activities (
			id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
			user_id UUID REFERENCES users(id) ON DELETE CASCADE,
			type VARCHAR(50) NOT NULL,
			message TEXT NOT NULL,
			event_id UUID,
			guest_id UUID,
			contact_id UUID,
			created_at TIMESTAMP DEFAULT NOW()
		)`,

		`CREATE TABLE IF NOT EXISTS notifications (
			id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
			user_id UUID REFERENCES users(id) ON DELETE CASCADE,
			type VARCHAR(20) DEFAULT 'info',
			priority VARCHAR(20) DEFAULT 'medium',
			title VARCHAR(255) NOT NULL,
			message TEXT NOT NULL,
			read BOOLEAN DEFAULT FALSE,
			action_url TEXT DEFAULT '',
			expires_at TIMESTAMP,
			created_at TIMESTAMP DEFAULT NOW()
		)`,

		`CREATE TABLE IF NOT EXISTS recent_searches (
			id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
			user_id UUID REFERENCES users(id) ON DELETE CASCADE,
			query VARCHAR(255) NOT NULL,
			searched_at TIMESTAMP DEFAULT NOW(),
			UNIQUE(user_id, query)
		)`,

		`CREATE INDEX IF NOT EXISTS idx_events_user_id ON events(user_id)`,
		`CREATE INDEX IF NOT EXISTS idx_events_date ON events(date)`,
		`CREATE INDEX IF NOT EXISTS idx_guests_event_id ON guests(event_id)`,
		`CREATE INDEX IF NOT EXISTS idx_guests_user_id ON guests(user_id)`,
		`CREATE INDEX IF NOT EXISTS idx_guests_rsvp_token ON guests(rsvp_token)`,
		`CREATE INDEX IF NOT EXISTS idx_contacts_user_id ON contacts(user_id)`,
		`CREATE INDEX IF NOT EXISTS idx_activities_user_id ON activities(user_id)`,
		`CREATE INDEX IF NOT EXISTS idx_notifications_user_id ON notifications(user_id)`,
		`CREATE INDEX IF NOT EXISTS idx_recent_searches_user_id ON recent_searches(user_id)`,
		`CREATE INDEX IF NOT EXISTS idx_sessions_user_id ON sessions(user_id)`,
	}

	for _, migration := range migrations {
		if _, err := db.Exec(migration); err != nil {
			return fmt.Errorf("failed to run migration: %w", err)
		}
	}

	return nil
}
