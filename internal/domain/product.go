package domain

// A sellable product as supplied by the inventory snapshot.
// Price is in whole VND; Quantity is the number of units the
// current run may still consume.
type Product struct {
	ID       int64
	Name     string
	Price    int64
	Quantity int64
}

// Value is the total remaining stock value of the product.
func (p Product) Value() int64 {
	return p.Price * p.Quantity
}

// Customer reference data. Never mutated by the pipeline.
type Customer struct {
	ID    int64
	Name  string
	Phone string
}
