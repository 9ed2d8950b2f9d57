package orders

import (
	"context"
	"errors"
	"fmt"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DB is the part of *pgxpool.Pool the repo needs.
type DB interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

type Repo struct{ DB DB }

var (
	ErrOrderNotFound    = errors.New("order not found")
	ErrCustomerNotFound = errors.New("customer data not found")
	ErrPackageNotFound  = errors.New("package data not found")
	ErrStatusNotUpdated = errors.New("failed to update order status")
)

const selectOrderData = `
	SELECT o.id::text, o.order_reference, o.customer_id::text, o.package_id::text, o.status,
	       o.shoe_type, o.quantity, o.special_instructions, o.total_amount::float8,
	       o.created_at, o.updated_at,
	       c.id::text, c.first_name, c.last_name, c.email, c.phone,
	       p.id::text, p.name, p.description, p.price::float8
	FROM shoe_cleaning_orders o
	LEFT JOIN web_customers c ON c.id = o.customer_id
	LEFT JOIN shoe_cleaning_packages p ON p.id = o.package_id
	WHERE o.order_reference = $1`

// GetOrderData loads one order together with its customer and package.
// A missing customer or package row is reported as a lookup failure too.
func (r *Repo) GetOrderData(ctx context.Context, orderReference string) (OrderData, error) {
	var (
		o            CleaningOrder
		status       string
		instructions *string

		custID, first, last, email, phone *string
		pkgID, pkgName, pkgDesc           *string
		pkgPrice                          *float64
	)
	err := r.DB.QueryRow(ctx, selectOrderData, orderReference).Scan(
		&o.ID, &o.OrderReference, &o.CustomerID, &o.PackageID, &status,
		&o.ShoeType, &o.Quantity, &instructions, &o.TotalAmount,
		&o.CreatedAt, &o.UpdatedAt,
		&custID, &first, &last, &email, &phone,
		&pkgID, &pkgName, &pkgDesc, &pkgPrice,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return OrderData{}, fmt.Errorf("%w: %s", ErrOrderNotFound, orderReference)
	}
	if err != nil {
		return OrderData{}, fmt.Errorf("get order data %s: %w", orderReference, err)
	}
	if custID == nil {
		return OrderData{}, ErrCustomerNotFound
	}
	if pkgID == nil {
		return OrderData{}, ErrPackageNotFound
	}

	o.Status = Status(status)
	o.SpecialInstructions = deref(instructions)
	return OrderData{
		Order: o,
		Customer: Customer{
			ID:        *custID,
			FirstName: deref(first),
			LastName:  deref(last),
			Email:     deref(email),
			Phone:     deref(phone),
		},
		Package: CleaningPackage{
			ID:          *pkgID,
			Name:        deref(pkgName),
			Description: deref(pkgDesc),
			Price:       derefFloat(pkgPrice),
		},
	}, nil
}

// UpdateOrderStatus writes status and a fresh updated_at. It does not look at
// the current status.
func (r *Repo) UpdateOrderStatus(ctx context.Context, orderReference string, status Status) error {
	ct, err := r.DB.Exec(ctx, `
		UPDATE shoe_cleaning_orders
		SET status = $2, updated_at = now()
		WHERE order_reference = $1`, orderReference, string(status))
	if err != nil {
		return fmt.Errorf("%w: %w", ErrStatusNotUpdated, err)
	}
	if ct.RowsAffected() == 0 {
		return fmt.Errorf("%w: no order with reference %s", ErrStatusNotUpdated, orderReference)
	}
	return nil
}

func (r *Repo) GetOrderStatus(ctx context.Context, orderReference string) (Status, error) {
	var s string
	err := r.DB.QueryRow(ctx, `SELECT status FROM shoe_cleaning_orders WHERE order_reference=$1`, orderReference).Scan(&s)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", fmt.Errorf("%w: %s", ErrOrderNotFound, orderReference)
	}
	if err != nil {
		return "", err
	}
	return Status(s), nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func derefFloat(f *float64) float64 {
	if f == nil {
		return 0
	}
	return *f
}
