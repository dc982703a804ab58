package domain

import "fmt"

// NotFoundError is the only domain error: the requested product does not exist.
type NotFoundError struct {
	Message string
}

func (e *NotFoundError) Error() string {
	return e.Message
}

func NewProductNotFoundError(id fmt.Stringer) *NotFoundError {
	return &NotFoundError{
		Message: fmt.Sprintf("Product not found with filter: %s", id),
	}
}
