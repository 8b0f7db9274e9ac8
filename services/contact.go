package services

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"partypass-api/models"
	"partypass-api/utils"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

type ContactService struct {
	db         *sql.DB
	activities *ActivityService
}

func NewContactService(db *sql.DB, activities *ActivityService) *ContactService {
	return &ContactService{db: db, activities: activities}
}

const contactColumns = `
	id, user_id, first_name, last_name, email, phone, dietary, notes, tags, created_at, updated_at
`

func scanContact(row interface{ Scan(...any) error }) (*models.Contact, error) {
	var c models.Contact
	err := row.Scan(
		&c.ID, &c.UserID, &c.FirstName, &c.LastName, &c.Email, &c.Phone,
		&c.Dietary, &c.Notes, pq.Array(&c.Tags), &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *ContactService) Create(ctx context.Context, userID string, req models.CreateContactRequest) (*models.Contact, error) {
	contact := &models.Contact{
		ID:        uuid.New().String(),
		UserID:    userID,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Phone:     req.Phone,
		Dietary:   req.Dietary,
		Notes:     req.Notes,
		Tags:      req.Tags,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	if contact.Tags == nil {
		contact.Tags = []string{}
	}

	query := `
		INSERT INTO contacts (id, user_id, first_name, last_name, email, phone, dietary, notes, tags, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`
	_, err := s.db.ExecContext(ctx, query,
		contact.ID, contact.UserID, contact.FirstName, contact.LastName, contact.Email,
		contact.Phone, contact.Dietary, contact.Notes, pq.Array(contact.Tags),
		contact.CreatedAt, contact.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create contact: %w", err)
	}

	s.logActivity(ctx, userID, models.ActivityContactAdded,
		fmt.Sprintf("Contact %s %s was added", contact.FirstName, contact.LastName), contact.ID)

	return contact, nil
}

func (s *ContactService) GetByID(ctx context.Context, id, userID string) (*models.Contact, error) {
	query := `SELECT ` + contactColumns + ` FROM contacts WHERE id = $1 AND user_id = $2`
	return scanContact(s.db.QueryRowContext(ctx, query, id, userID))
}

func (s *ContactService) List(ctx context.Context, userID string) ([]models.Contact, error) {
	query := `SELECT ` + contactColumns + `
		FROM contacts
		WHERE user_id = $1
		ORDER BY first_name, last_name
	`

	rows, err := s.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	contacts := []models.Contact{}
	for rows.Next() {
		c, err := scanContact(rows)
		if err != nil {
			return nil, err
		}
		contacts = append(contacts, *c)
	}

	return contacts, rows.Err()
}

func (s *ContactService) Update(ctx context.Context, id, userID string, req models.UpdateContactRequest) (*models.Contact, error) {
	contact, err := s.GetByID(ctx, id, userID)
	if err != nil {
		return nil, err
	}

	if req.FirstName != nil {
		contact.FirstName = *req.FirstName
	}
	if req.LastName != nil {
		contact.LastName = *req.LastName
	}
	if req.Email != nil {
		contact.Email = *req.Email
	}
	if req.Phone != nil {
		contact.Phone = *req.Phone
	}
	if req.Dietary != nil {
		contact.Dietary = *req.Dietary
	}
	if req.Notes != nil {
		contact.Notes = *req.Notes
	}
	if req.Tags != nil {
		contact.Tags = req.Tags
	}
	contact.UpdatedAt = time.Now()

	query := `
		UPDATE contacts
		SET first_name = $1, last_name = $2, email = $3, phone = $4,
			dietary = $5, notes = $6, tags = $7, updated_at = $8
		WHERE id = $9 AND user_id = $10
	`
	_, err = s.db.ExecContext(ctx, query,
		contact.FirstName, contact.LastName, contact.Email, contact.Phone,
		contact.Dietary, contact.Notes, pq.Array(contact.Tags), contact.UpdatedAt,
		id, userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to update contact: %w", err)
	}

	s.logActivity(ctx, userID, models.ActivityContactUpdated,
		fmt.Sprintf("Contact %s %s was updated", contact.FirstName, contact.LastName), contact.ID)

	return contact, nil
}

func (s *ContactService) Delete(ctx context.Context, id, userID string) error {
	contact, err := s.GetByID(ctx, id, userID)
	if err != nil {
		return err
	}

	if _, err := s.db.ExecContext(ctx,
		`DELETE FROM contacts WHERE id = $1 AND user_id = $2`, id, userID); err != nil {
		return fmt.Errorf("failed to delete contact: %w", err)
	}

	s.logActivity(ctx, userID, models.ActivityContactRemoved,
		fmt.Sprintf("Contact %s %s was removed", contact.FirstName, contact.LastName), "")

	return nil
}

// ============================================================================
// CSV IMPORT / EXPORT
// ============================================================================

// ExportCSV renders all of a user's contacts in the fixed exchange format.
func (s *ContactService) ExportCSV(ctx context.Context, userID string) (string, error) {
	contacts, err := s.List(ctx, userID)
	if err != nil {
		return "", err
	}

	records := make([]utils.ContactCSVRecord, len(contacts))
	for i, c := range contacts {
		records[i] = utils.ContactCSVRecord{
			FirstName: c.FirstName,
			LastName:  c.LastName,
			Email:     c.Email,
			Phone:     c.Phone,
			Dietary:   c.Dietary,
		}
	}

	return utils.ExportContactsCSV(records), nil
}

// ImportCSV bulk-creates contacts from CSV data. Rows that fail individually
// are reported but do not abort the rest of the import.
func (s *ContactService) ImportCSV(ctx context.Context, userID, data string) (*models.ImportContactsResponse, error) {
	records, rowErrors, err := utils.ParseContactsCSV(data)
	if err != nil {
		return nil, err
	}

	resp := &models.ImportContactsResponse{Errors: rowErrors, Skipped: len(rowErrors)}
	for _, rec := range records {
		_, err := s.Create(ctx, userID, models.CreateContactRequest{
			FirstName: rec.FirstName,
			LastName:  rec.LastName,
			Email:     rec.Email,
			Phone:     rec.Phone,
			Dietary:   rec.Dietary,
		})
		if err != nil {
			resp.Skipped++
			resp.Errors = append(resp.Errors, fmt.Sprintf("%s %s: %v", rec.FirstName, rec.LastName, err))
			continue
		}
		resp.Imported++
	}

	return resp, nil
}

func (s *ContactService) logActivity(ctx context.Context, userID string, activityType models.ActivityType, message, contactID string) {
	err := s.activities.Log(ctx, &models.Activity{
		UserID:    userID,
		Type:      activityType,
		Message:   message,
		ContactID: contactID,
	})
	if err != nil {
		utils.SafeWarn("failed to log activity %s: %v", activityType, err)
	}
}
