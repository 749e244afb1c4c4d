package repositories

import "context"

// Repository aggregates the per-table repositories
type Repository interface {
	// Test domain
	Test() TestRepository
	Question() QuestionRepository

	// Attempt domain
	Attempt() AttemptRepository
	Answer() AnswerRepository
	ShuffleConfig() ShuffleConfigRepository

	// Transaction support. Repositories handed to fn share one transaction.
	WithTransaction(ctx context.Context, fn func(Repository) error) error

	// Health check
	Ping(ctx context.Context) error

	// Close connections
	Close() error
}
