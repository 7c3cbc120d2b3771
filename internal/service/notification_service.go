package service

import (
	"encoding/json"
	"fmt"

	"vendora/internal/domain"
	"vendora/internal/models"
	"vendora/internal/repository"
	"vendora/internal/ws"
)

// NotificationService persists a notification row and pushes it to connected
// WebSocket clients. Strictly best-effort: callers on financial paths must
// tolerate every failure here.
type NotificationService struct {
	repo *repository.NotificationRepository
	hub  *ws.Hub
}

func NewNotificationService(repo *repository.NotificationRepository, hub *ws.Hub) *NotificationService {
	return &NotificationService{repo: repo, hub: hub}
}

func (s *NotificationService) Notify(userID uint, notifType, title, body string, data map[string]interface{}) error {
	var dataJSON string
	if data != nil {
		b, _ := json.Marshal(data)
		dataJSON = string(b)
	}
	err := s.repo.Create(&models.Notification{
		UserID: userID,
		Type:   notifType,
		Title:  title,
		Body:   body,
		Data:   dataJSON,
	})
	if err != nil {
		return err
	}
	if s.hub != nil {
		s.hub.BroadcastToUser(userID, map[string]interface{}{
			"type":  notifType,
			"title": title,
			"body":  body,
			"data":  data,
		})
	}
	return nil
}

func (s *NotificationService) WithdrawalRequested(userID uint, w *models.Withdrawal) error {
	return s.Notify(userID, domain.NotifWithdrawalRequested, "Withdrawal requested",
		fmt.Sprintf("Your withdrawal request %s for %s is pending review.", w.Reference, formatCents(w.AmountNetCents)),
		withdrawalData(w))
}

func (s *NotificationService) WithdrawalValidated(userID uint, w *models.Withdrawal) error {
	return s.Notify(userID, domain.NotifWithdrawalValidated, "Withdrawal approved",
		fmt.Sprintf("Your withdrawal %s was approved and is awaiting payout.", w.Reference),
		withdrawalData(w))
}

func (s *NotificationService) WithdrawalRejected(userID uint, w *models.Withdrawal, reason string) error {
	data := withdrawalData(w)
	data["reason"] = reason
	return s.Notify(userID, domain.NotifWithdrawalRejected, "Withdrawal rejected",
		fmt.Sprintf("Your withdrawal %s was rejected: %s. The funds are back in your balance.", w.Reference, reason),
		data)
}

func (s *NotificationService) WithdrawalPaid(userID uint, w *models.Withdrawal) error {
	return s.Notify(userID, domain.NotifWithdrawalPaid, "Withdrawal paid",
		fmt.Sprintf("Your withdrawal %s for %s has been paid out.", w.Reference, formatCents(w.AmountNetCents)),
		withdrawalData(w))
}

func (s *NotificationService) WithdrawalFailed(userID uint, w *models.Withdrawal, reason string) error {
	data := withdrawalData(w)
	data["reason"] = reason
	return s.Notify(userID, domain.NotifWithdrawalFailed, "Withdrawal failed",
		fmt.Sprintf("The payout for withdrawal %s failed: %s. The funds are back in your balance.", w.Reference, reason),
		data)
}

func withdrawalData(w *models.Withdrawal) map[string]interface{} {
	return map[string]interface{}{
		"withdrawal_id":    w.ID,
		"reference":        w.Reference,
		"amount_net_cents": w.AmountNetCents,
		"status":           w.Status,
	}
}

func formatCents(cents int64) string {
	return fmt.Sprintf("%d.%02d", cents/100, cents%100)
}
