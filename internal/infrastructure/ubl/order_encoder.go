// Package ubl serializa órdenes de compra como documento UBL 2.1 Order.
package ubl

import (
	"context"
	"fmt"
	"strconv"

	"github.com/beevik/etree"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/stockflow-api/internal/application/documents"
)

// Namespaces UBL 2.1 Order.
const (
	NsOrder = "urn:oasis:names:specification:ubl:schema:xsd:Order-2"
	NsCac   = "urn:oasis:names:specification:ubl:schema:xsd:CommonAggregateComponents-2"
	NsCbc   = "urn:oasis:names:specification:ubl:schema:xsd:CommonBasicComponents-2"
)

// unidad por defecto (UN/ECE Rec 20): "one"
const defaultUnitCode = "C62"

var _ documents.OrderXMLEncoder = (*OrderEncoder)(nil)

// OrderEncoder implementa documents.OrderXMLEncoder con etree.
type OrderEncoder struct{}

// NewOrderEncoder crea el encoder.
func NewOrderEncoder() *OrderEncoder {
	return &OrderEncoder{}
}

// EncodeOrder genera el XML <Order> de la orden de compra: el emisor es el comprador
// (BuyerCustomerParty) y la contraparte el proveedor (SellerSupplierParty).
func (e *OrderEncoder) EncodeOrder(_ context.Context, doc *documents.OrderDocument) ([]byte, error) {
	if doc == nil || doc.OrderNumber == "" {
		return nil, fmt.Errorf("ubl: orden sin número")
	}
	x := etree.NewDocument()
	x.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)

	root := x.CreateElement("Order")
	root.CreateAttr("xmlns", NsOrder)
	root.CreateAttr("xmlns:cac", NsCac)
	root.CreateAttr("xmlns:cbc", NsCbc)

	cbc(root, "UBLVersionID", "2.1")
	cbc(root, "ID", doc.OrderNumber)
	cbc(root, "UUID", doc.OrderID)
	cbc(root, "IssueDate", doc.IssueDate.Format("2006-01-02"))
	if doc.Notes != "" {
		cbc(root, "Note", doc.Notes)
	}
	cbc(root, "DocumentCurrencyCode", doc.Currency)
	cbc(root, "LineCountNumeric", strconv.Itoa(len(doc.Lines)))

	party(root.CreateElement("cac:BuyerCustomerParty"), "", doc.Issuer)
	party(root.CreateElement("cac:SellerSupplierParty"), doc.CounterpartyID, doc.Counterparty)

	if doc.DueDate != nil {
		period := root.CreateElement("cac:Delivery").CreateElement("cac:RequestedDeliveryPeriod")
		cbc(period, "EndDate", doc.DueDate.Format("2006-01-02"))
	}

	total := root.CreateElement("cac:AnticipatedMonetaryTotal")
	amount(total, "LineExtensionAmount", doc.Total, doc.Currency)
	amount(total, "PayableAmount", doc.Total, doc.Currency)

	for i, l := range doc.Lines {
		orderLine(root, i+1, l, doc.Currency)
	}

	x.Indent(2)
	out, err := x.WriteToBytes()
	if err != nil {
		return nil, fmt.Errorf("ubl: serializar: %w", err)
	}
	return out, nil
}

func orderLine(root *etree.Element, n int, l documents.DocumentLine, currency string) {
	li := root.CreateElement("cac:OrderLine").CreateElement("cac:LineItem")
	cbc(li, "ID", strconv.Itoa(n))
	q := cbc(li, "Quantity", formatDecimal(l.Quantity))
	q.CreateAttr("unitCode", unitCode(l.Unit))
	amount(li, "LineExtensionAmount", l.Total, currency)

	price := li.CreateElement("cac:Price")
	amount(price, "PriceAmount", l.UnitPrice, currency)

	item := li.CreateElement("cac:Item")
	cbc(item, "Name", l.Description)
	if l.SKU != "" {
		cbc(item.CreateElement("cac:SellersItemIdentification"), "ID", l.SKU)
	}
}

func party(el *etree.Element, id, name string) {
	p := el.CreateElement("cac:Party")
	if id != "" {
		cbc(p.CreateElement("cac:PartyIdentification"), "ID", id)
	}
	cbc(p.CreateElement("cac:PartyName"), "Name", name)
}

func cbc(parent *etree.Element, local, value string) *etree.Element {
	el := parent.CreateElement("cbc:" + local)
	el.SetText(value)
	return el
}

func amount(parent *etree.Element, local string, v decimal.Decimal, currency string) {
	el := cbc(parent, local, v.StringFixed(2))
	el.CreateAttr("currencyID", currency)
}

func unitCode(unit string) string {
	switch unit {
	case "kg":
		return "KGM"
	case "g":
		return "GRM"
	case "l":
		return "LTR"
	case "m":
		return "MTR"
	case "box":
		return "BX"
	}
	return defaultUnitCode
}

// formatDecimal sin notación exponencial ni ceros sobrantes.
func formatDecimal(d decimal.Decimal) string {
	return d.String()
}
