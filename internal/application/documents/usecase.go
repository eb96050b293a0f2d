package documents

import (
	"context"
	"fmt"

	"github.com/jhoicas/stockflow-api/internal/application/ports"
	"github.com/jhoicas/stockflow-api/internal/domain"
	"github.com/jhoicas/stockflow-api/internal/domain/entity"
)

// DocumentsUseCase arma la representación de una orden y delega el formato al generador.
type DocumentsUseCase struct {
	repos  ports.Repos
	pdf    PDFGenerator
	xml    OrderXMLEncoder
	issuer string
}

// NewDocumentsUseCase construye el caso de uso. issuer es el nombre que se imprime como emisor.
func NewDocumentsUseCase(repos ports.Repos, pdf PDFGenerator, xml OrderXMLEncoder, issuer string) *DocumentsUseCase {
	return &DocumentsUseCase{repos: repos, pdf: pdf, xml: xml, issuer: issuer}
}

// SalesOrderPDF genera el PDF de una orden de venta.
func (uc *DocumentsUseCase) SalesOrderPDF(ctx context.Context, companyID, id string) ([]byte, string, error) {
	doc, err := uc.salesOrderDocument(ctx, companyID, id)
	if err != nil {
		return nil, "", err
	}
	b, err := uc.pdf.GenerateOrderPDF(ctx, doc)
	if err != nil {
		return nil, "", fmt.Errorf("pdf: generación fallida: %w", err)
	}
	return b, fmt.Sprintf("orden_venta_%s.pdf", doc.OrderNumber), nil
}

// PurchaseOrderPDF genera el PDF de una orden de compra.
func (uc *DocumentsUseCase) PurchaseOrderPDF(ctx context.Context, companyID, id string) ([]byte, string, error) {
	doc, err := uc.purchaseOrderDocument(ctx, companyID, id)
	if err != nil {
		return nil, "", err
	}
	b, err := uc.pdf.GenerateOrderPDF(ctx, doc)
	if err != nil {
		return nil, "", fmt.Errorf("pdf: generación fallida: %w", err)
	}
	return b, fmt.Sprintf("orden_compra_%s.pdf", doc.OrderNumber), nil
}

// PurchaseOrderUBL exporta la orden de compra como UBL Order. Un borrador aún no es un
// documento para el proveedor, por eso se rechaza con ErrInvalidTransition.
func (uc *DocumentsUseCase) PurchaseOrderUBL(ctx context.Context, companyID, id string) ([]byte, string, error) {
	doc, err := uc.purchaseOrderDocument(ctx, companyID, id)
	if err != nil {
		return nil, "", err
	}
	if doc.Status == string(entity.PurchaseOrderDraft) || doc.Status == string(entity.PurchaseOrderCancelled) {
		return nil, "", fmt.Errorf("%w: la orden está en estado %s", domain.ErrInvalidTransition, doc.Status)
	}
	b, err := uc.xml.EncodeOrder(ctx, doc)
	if err != nil {
		return nil, "", fmt.Errorf("ubl: serialización fallida: %w", err)
	}
	return b, fmt.Sprintf("orden_compra_%s.xml", doc.OrderNumber), nil
}

func (uc *DocumentsUseCase) salesOrderDocument(ctx context.Context, companyID, id string) (*OrderDocument, error) {
	o, err := uc.repos.SalesOrders.GetByID(ctx, companyID, id)
	if err != nil {
		return nil, fmt.Errorf("documento: obtener orden: %w", err)
	}
	if o == nil {
		return nil, domain.ErrNotFound
	}
	doc := &OrderDocument{
		Kind:           KindSalesOrder,
		Issuer:         uc.issuer,
		OrderID:        o.ID,
		OrderNumber:    o.OrderNumber,
		Status:         string(o.Status),
		IssueDate:      o.CreatedAt,
		DueDate:        o.DueDate,
		Currency:       o.Currency,
		CounterpartyID: o.AccountID,
		Notes:          o.Notes,
		Total:          o.TotalAmount,
	}
	if err := uc.fillCounterparty(ctx, companyID, doc); err != nil {
		return nil, err
	}
	productIDs := make([]string, 0, len(o.Items))
	for _, it := range o.Items {
		productIDs = append(productIDs, it.ProductID)
	}
	products, err := uc.repos.Products.GetByIDs(ctx, companyID, productIDs)
	if err != nil {
		return nil, fmt.Errorf("documento: obtener productos: %w", err)
	}
	for _, it := range o.Items {
		line := DocumentLine{
			LineID:      it.ID,
			Description: it.Description,
			Quantity:    it.Quantity,
			Done:        it.FulfilledQuantity,
			UnitPrice:   it.UnitPrice,
			Discount:    it.Discount,
			Total:       it.LineTotal(),
		}
		withProduct(&line, products[it.ProductID], it.ProductID)
		doc.Lines = append(doc.Lines, line)
	}
	return doc, nil
}

func (uc *DocumentsUseCase) purchaseOrderDocument(ctx context.Context, companyID, id string) (*OrderDocument, error) {
	o, err := uc.repos.PurchaseOrders.GetByID(ctx, companyID, id)
	if err != nil {
		return nil, fmt.Errorf("documento: obtener orden: %w", err)
	}
	if o == nil {
		return nil, domain.ErrNotFound
	}
	doc := &OrderDocument{
		Kind:           KindPurchaseOrder,
		Issuer:         uc.issuer,
		OrderID:        o.ID,
		OrderNumber:    o.OrderNumber,
		Status:         string(o.Status),
		IssueDate:      o.CreatedAt,
		DueDate:        o.ExpectedDate,
		Currency:       o.Currency,
		CounterpartyID: o.SupplierID,
		Notes:          o.Notes,
		Total:          o.TotalAmount,
	}
	if err := uc.fillCounterparty(ctx, companyID, doc); err != nil {
		return nil, err
	}
	productIDs := make([]string, 0, len(o.Items))
	for _, it := range o.Items {
		productIDs = append(productIDs, it.ProductID)
	}
	products, err := uc.repos.Products.GetByIDs(ctx, companyID, productIDs)
	if err != nil {
		return nil, fmt.Errorf("documento: obtener productos: %w", err)
	}
	for _, it := range o.Items {
		line := DocumentLine{
			LineID:      it.ID,
			Description: it.Description,
			Quantity:    it.QuantityOrdered,
			Done:        it.QuantityReceived,
			UnitPrice:   it.UnitCost,
			Total:       it.LineTotal(),
		}
		withProduct(&line, products[it.ProductID], it.ProductID)
		doc.Lines = append(doc.Lines, line)
	}
	return doc, nil
}

func (uc *DocumentsUseCase) fillCounterparty(ctx context.Context, companyID string, doc *OrderDocument) error {
	if doc.CounterpartyID == "" {
		return nil
	}
	acc, err := uc.repos.Accounts.GetByID(ctx, companyID, doc.CounterpartyID)
	if err != nil {
		return fmt.Errorf("documento: obtener cuenta: %w", err)
	}
	if acc != nil {
		doc.Counterparty = acc.Name
	}
	return nil
}

// withProduct completa SKU, unidad y descripción; si el producto ya no existe se usa el id.
func withProduct(line *DocumentLine, p *entity.Product, productID string) {
	if p == nil {
		line.SKU = productID
		if line.Description == "" {
			line.Description = "Producto " + productID
		}
		return
	}
	line.SKU = p.SKU
	line.Unit = p.Unit
	if line.Description == "" {
		line.Description = p.Name
	}
}
