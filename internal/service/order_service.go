package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/reefcloud/catalog-provision-service/internal/models"
	"github.com/reefcloud/catalog-provision-service/internal/provision"
	"github.com/reefcloud/catalog-provision-service/internal/repository"
)

// OrderService handles the order item lifecycle around the provisioning
// core: record creation with the price snapshot, scheduling exactly one
// provision attempt per created item, explicit retirement, and reads.
type OrderService struct {
	orderItemRepo *repository.OrderItemRepository
	productRepo   *repository.ProductRepository
	logRepo       *repository.LogRepository
	dispatcher    *provision.Dispatcher
}

func NewOrderService(
	orderItemRepo *repository.OrderItemRepository,
	productRepo *repository.ProductRepository,
	logRepo *repository.LogRepository,
	dispatcher *provision.Dispatcher,
) *OrderService {
	return &OrderService{
		orderItemRepo: orderItemRepo,
		productRepo:   productRepo,
		logRepo:       logRepo,
		dispatcher:    dispatcher,
	}
}

// CreateOrderItem records a purchased product instance and schedules its
// single provisioning attempt. The caller gets an answer immediately;
// provisioning proceeds in the background and may complete minutes later.
func (s *OrderService) CreateOrderItem(ctx context.Context, req *models.CreateOrderItemRequest) (*models.CreateOrderItemResponse, error) {
	product, err := s.productRepo.GetByID(ctx, req.ProductID)
	if err != nil {
		return nil, fmt.Errorf("product %s: %w", req.ProductID, err)
	}

	item := &models.OrderItem{
		ID:        uuid.New().String(),
		OrderID:   req.OrderID,
		ProductID: product.ID,
		UUID:      uuid.New().String(),
		Status:    models.StatusUnknown,

		// Price snapshot: frozen now, immune to later product changes.
		SetupPrice:   product.SetupPrice,
		HourlyPrice:  product.HourlyPrice,
		MonthlyPrice: product.MonthlyPrice,
	}
	if req.ProjectID != "" {
		item.ProjectID = &req.ProjectID
	}

	if err := s.orderItemRepo.Create(ctx, item); err != nil {
		return nil, fmt.Errorf("create order item: %w", err)
	}

	if len(req.Answers) > 0 {
		if err := s.orderItemRepo.SaveAnswers(ctx, item.ID, req.Answers); err != nil {
			return nil, fmt.Errorf("save answers: %w", err)
		}
	}

	s.logRepo.LogAction(ctx, item.ID, "provision_requested", item.Status,
		fmt.Sprintf("Order item created for product %s, provisioning scheduled", product.Name))

	// The insert above has committed; the worker will re-read the record.
	s.dispatcher.DispatchProvision(item.ID)

	log.Printf("[OrderService] Order item %s created (product=%s backend=%s)", item.ID, product.ID, product.Backend)

	return &models.CreateOrderItemResponse{
		OrderItemID: item.ID,
		Status:      item.Status,
		Message:     "Provisioning scheduled",
	}, nil
}

// RetireOrderItem schedules one retirement attempt for an order item.
func (s *OrderService) RetireOrderItem(ctx context.Context, orderItemID string) (*models.RetireOrderItemResponse, error) {
	item, err := s.orderItemRepo.GetByID(ctx, orderItemID)
	if err != nil {
		return nil, err
	}

	s.logRepo.LogAction(ctx, item.ID, "retire_requested", item.Status, "Retirement scheduled")
	s.dispatcher.DispatchRetire(item.ID)

	return &models.RetireOrderItemResponse{
		OrderItemID: item.ID,
		Status:      item.Status,
		Message:     "Retirement scheduled",
	}, nil
}

// DeleteOrderItem soft-deletes the record. Deletion is independent of
// provisioning status; it never tears down the backing resource.
func (s *OrderService) DeleteOrderItem(ctx context.Context, orderItemID string) error {
	return s.orderItemRepo.SoftDelete(ctx, orderItemID)
}

// GetOrderItem returns the read-only view of an order item.
func (s *OrderService) GetOrderItem(ctx context.Context, orderItemID string) (*models.OrderItemStatusResponse, error) {
	item, err := s.orderItemRepo.GetByID(ctx, orderItemID)
	if err != nil {
		return nil, err
	}
	return toStatusResponse(item), nil
}

// GetOrderItems returns the items of an order.
func (s *OrderService) GetOrderItems(ctx context.Context, orderID string) ([]*models.OrderItemStatusResponse, error) {
	items, err := s.orderItemRepo.GetByOrderID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	responses := make([]*models.OrderItemStatusResponse, 0, len(items))
	for _, item := range items {
		responses = append(responses, toStatusResponse(item))
	}
	return responses, nil
}

// GetOrderItemLogs returns the provisioning audit trail of an order item.
func (s *OrderService) GetOrderItemLogs(ctx context.Context, orderItemID string, limit int) ([]models.OrderItemLogEntry, error) {
	entries, err := s.logRepo.GetByOrderItemID(ctx, orderItemID, limit)
	if err != nil {
		return nil, err
	}

	out := make([]models.OrderItemLogEntry, 0, len(entries))
	for _, e := range entries {
		out = append(out, models.OrderItemLogEntry{
			Action:    e.Action,
			Status:    e.Status,
			Message:   e.Message,
			CreatedAt: e.CreatedAt.Format(time.RFC3339),
		})
	}
	return out, nil
}

func toStatusResponse(item *models.OrderItem) *models.OrderItemStatusResponse {
	return &models.OrderItemStatusResponse{
		OrderItemID:  item.ID,
		OrderID:      item.OrderID,
		ProductID:    item.ProductID,
		UUID:         item.UUID,
		Status:       item.Status,
		StatusMsg:    item.StatusMsg,
		ExternalID:   item.ExternalID,
		InstanceName: item.InstanceName,
		Host:         item.Host,
		Port:         item.Port,
		URL:          item.URL,
		PublicIP:     item.PublicIP,
		PrivateIP:    item.PrivateIP,
		Username:     item.Username,
		SetupPrice:   item.SetupPrice,
		HourlyPrice:  item.HourlyPrice,
		MonthlyPrice: item.MonthlyPrice,
		CreatedAt:    item.CreatedAt.Format(time.RFC3339),
	}
}
