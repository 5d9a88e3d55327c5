package repository

// Repos agrupa los repositorios atados a una misma transacción.
type Repos struct {
	Products  ProductRepository
	Stock     StockRepository
	Movements InventoryMovementRepository
	Tickets   TicketRepository
	Orders    ServiceOrderRepository
	Sales     SaleRepository
	Payments  PaymentRepository
}
