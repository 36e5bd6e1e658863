package domain

// Book is the order-book contract entity. It tracks the current fee and owner
// together with the ids of every order created through it.
type Book struct {
	Id      string
	Address string
	Fee     string
	Owner   string
	Orders  []string
}

// NewBook returns a book entity for the given contract address.
func NewBook(address string) *Book {
	return &Book{Id: address, Address: address, Orders: []string{}}
}

// AddOrder appends an order id to the book. Idempotent by id.
func (b *Book) AddOrder(orderId string) bool {
	for _, id := range b.Orders {
		if id == orderId {
			return false
		}
	}
	b.Orders = append(b.Orders, orderId)
	return true
}
