package interfaces

// Repository defines the interface for data persistence
type Repository interface {
	Product() ProductRepository
	Order() OrderRepository
	User() UserRepository

	Close() error
}
