package entity

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/dulcerialilis/lilis-api/internal/domain"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestProduct_RecomputeAlerts(t *testing.T) {
	p := &Product{StockCurrent: d("45"), StockMin: d("50")}
	p.RecomputeAlerts()
	assert.True(t, p.LowStockFlag)

	p.StockCurrent = d("50")
	p.RecomputeAlerts()
	assert.False(t, p.LowStockFlag, "igual al mínimo no es bajo stock")
}

func TestProduct_MarginYReorden(t *testing.T) {
	p := &Product{SalePrice: d("1000"), StandardCost: d("700"), StockCurrent: d("10"), StockMin: d("5"), ReorderPoint: d("10")}
	assert.True(t, p.MarginPct().Equal(d("30")))
	assert.True(t, p.RequiresReorder())

	p.AverageCost = d("600")
	assert.True(t, p.MarginPct().Equal(d("40")))

	p.ReorderPoint = decimal.Zero
	assert.False(t, p.RequiresReorder(), "sin punto de reorden se usa el mínimo")

	assert.True(t, (&Product{}).MarginPct().IsZero())
}

func TestTransiciones(t *testing.T) {
	assert.NoError(t, CheckProductTransition(ProductStatusActive, ProductStatusInactive))
	assert.ErrorIs(t, CheckProductTransition(ProductStatusDiscontinued, ProductStatusActive), domain.ErrInvalidTransition)
	assert.ErrorIs(t, CheckProductTransition(ProductStatusActive, "BORRADO"), domain.ErrInvalidInput)

	assert.NoError(t, CheckSupplierTransition(SupplierStatusBlocked, SupplierStatusActive))
	assert.ErrorIs(t, CheckSupplierTransition(SupplierStatusActive, SupplierStatusActive), domain.ErrInvalidTransition)

	assert.NoError(t, CheckUserTransition(UserStatusInactive, UserStatusActive))
	assert.ErrorIs(t, CheckUserTransition(UserStatusInactive, UserStatusBlocked), domain.ErrInvalidTransition)

	assert.NoError(t, CheckMovementTransition(MovementStatusPending, MovementStatusConfirmed))
	assert.ErrorIs(t, CheckMovementTransition(MovementStatusConfirmed, MovementStatusCancelled), domain.ErrInvalidTransition)

	assert.NoError(t, CheckOrderTransition(OrderStatusConfirmed, OrderStatusPartiallyReceived))
	assert.ErrorIs(t, CheckOrderTransition(OrderStatusPartiallyReceived, OrderStatusCancelled), domain.ErrInvalidTransition)
	assert.ErrorIs(t, CheckOrderTransition(OrderStatusCancelled, OrderStatusDraft), domain.ErrInvalidTransition)
}

func TestMovementTypeRequirements(t *testing.T) {
	assert.True(t, NeedsSupplier(MovementTypeReturn))
	assert.False(t, NeedsSupplier(MovementTypeEgress))
	assert.True(t, NeedsSource(MovementTypeAdjustment))
	assert.False(t, NeedsSource(MovementTypeIngress))
	assert.True(t, NeedsDestination(MovementTypeTransfer))
	assert.False(t, NeedsDestination(MovementTypeReturn))
	assert.False(t, IsMovementType("IN"))
}

func TestPurchaseOrderLine_Pending(t *testing.T) {
	l := PurchaseOrderLine{RequestedQty: d("10"), ReceivedQty: d("4")}
	assert.True(t, l.Pending().Equal(d("6")))
	l.ReceivedQty = d("12")
	assert.True(t, l.Pending().IsZero())
}

func TestPasswordResetToken_Usable(t *testing.T) {
	now := time.Now()
	tok := &PasswordResetToken{ExpiresAt: now.Add(time.Hour)}
	assert.True(t, tok.Usable(now))
	assert.False(t, tok.Usable(now.Add(2*time.Hour)))
	tok.UsedAt = &now
	assert.False(t, tok.Usable(now))
}

func TestUser_FullName(t *testing.T) {
	assert.Equal(t, "ana", (&User{Username: "ana"}).FullName())
	assert.Equal(t, "Ana Pérez", (&User{Username: "ana", FirstName: "Ana", LastName: "Pérez"}).FullName())
}
