package orders

import "time"

type Customer struct {
	ID        string
	FirstName string
	LastName  string
	Email     string
	Phone     string // optional
}

func (c Customer) FullName() string { return c.FirstName + " " + c.LastName }

type CleaningOrder struct {
	ID                  string
	OrderReference      string
	CustomerID          string
	PackageID           string
	Status              Status
	ShoeType            string
	Quantity            int
	SpecialInstructions string // optional
	TotalAmount         float64
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

type CleaningPackage struct {
	ID          string
	Name        string
	Description string
	Price       float64
}

// OrderData is the joined read view of one order, assembled per request.
type OrderData struct {
	Order    CleaningOrder
	Customer Customer
	Package  CleaningPackage
}
