package ledger

import (
	"errors"
	"fmt"
	"math"
)

// MaxQuantity bounds a single line. The archive stores quantities as INTEGER.
const MaxQuantity = math.MaxInt32

// All ledger errors are recoverable: the operation that returned one left
// the ledger exactly as it was.
var (
	ErrNotFound             = errors.New("not found")
	ErrNoActiveTable        = errors.New("no table selected")
	ErrNoOpenOrder          = errors.New("no open order for table")
	ErrInvalidQuantity      = errors.New("invalid quantity")
	ErrInvalidPaymentMethod = errors.New("invalid payment method")
	ErrInvalidStatus        = errors.New("invalid status")
	ErrInvalidAmount        = errors.New("invalid amount")
	ErrInvalidMenuItem      = errors.New("invalid menu item")

	ErrQuantityTooLarge = fmt.Errorf("%w: above %d", ErrInvalidQuantity, MaxQuantity)
)
