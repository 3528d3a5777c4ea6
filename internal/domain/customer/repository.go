package customer

import "context"

type CustomerRepository interface {
	// Save inserts a new customer and populates CustomerID and timestamps.
	Save(ctx context.Context, customer *Customer) error

	FindByID(ctx context.Context, customerID int64) (*Customer, error)

	// Upsert writes a customer row keyed by an externally supplied CustomerID.
	// Used by the ingestion job; re-ingesting the same row updates in place.
	Upsert(ctx context.Context, customer *Customer) error

	// SyncIDSequence advances the id sequence past the highest upserted id so
	// later Save calls do not collide with ingested rows.
	SyncIDSequence(ctx context.Context) error
}
