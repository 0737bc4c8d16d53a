package memory

import (
	"github.com/secmon-lab/foodrec/pkg/domain/interfaces"
)

// Repository is an alias for Memory to match the pattern
type Repository = Memory

type Memory struct {
	product *productRepository
	order   *orderRepository
	user    *userRepository
}

var _ interfaces.Repository = &Memory{}

func New() *Memory {
	return &Memory{
		product: newProductRepository(),
		order:   newOrderRepository(),
		user:    newUserRepository(),
	}
}

func (m *Memory) Product() interfaces.ProductRepository {
	return m.product
}

func (m *Memory) Order() interfaces.OrderRepository {
	return m.order
}

func (m *Memory) User() interfaces.UserRepository {
	return m.user
}

func (m *Memory) Close() error {
	return nil
}
