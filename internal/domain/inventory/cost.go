package inventory

import "github.com/shopspring/decimal"

// WeightedAverageCost costo promedio ponderado tras una entrada de mercancía.
// nuevo = ((onHand × costoActual) + (cantEntrada × costoEntrada)) / (onHand + cantEntrada)
// Con existencias negativas o nulas el costo pasa a ser el de la entrada.
func WeightedAverageCost(onHand, currentCost, qtyIn, unitCostIn decimal.Decimal) decimal.Decimal {
	if !qtyIn.GreaterThan(decimal.Zero) {
		return currentCost
	}
	if !onHand.GreaterThan(decimal.Zero) {
		return unitCostIn
	}
	num := onHand.Mul(currentCost).Add(qtyIn.Mul(unitCostIn))
	return num.Div(onHand.Add(qtyIn)).Round(4)
}
