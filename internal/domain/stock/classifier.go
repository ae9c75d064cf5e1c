package stock

// Status es el estado de inventario derivado de la cantidad.
type Status string

const (
	StatusAvailable  Status = "available"
	StatusLimited    Status = "limited"
	StatusOutOfStock Status = "out_of_stock"
)

// Umbrales de clasificación. Son política fija del sistema, no configurables:
// cantidad <= 0 agotado, <= LimitedThreshold limitado, el resto disponible.
const LimitedThreshold = 10

// Classify deriva el estado de inventario a partir de la cantidad.
// Total y pura: cualquier entero tiene un estado. Cantidades negativas no
// deberían llegar aquí (los mutadores las rechazan antes) pero se tratan
// uniformemente como agotado.
func Classify(quantity int) Status {
	switch {
	case quantity <= 0:
		return StatusOutOfStock
	case quantity <= LimitedThreshold:
		return StatusLimited
	default:
		return StatusAvailable
	}
}
