package handler

import (
	"github.com/courierpwa/courier-ops/internal/core/domain"
	"github.com/courierpwa/courier-ops/internal/core/ports"
)

// --- Request → Service input ---

func toCreateParcelInput(req createParcelRequest, idempotencyKey string) ports.CreateParcelInput {
	return ports.CreateParcelInput{
		SenderName:       req.SenderName,
		SenderPhone:      req.SenderPhone,
		RecipientName:    req.RecipientName,
		RecipientPhone:   req.RecipientPhone,
		DestinationID:    req.DestinationID,
		ShortDescription: req.ShortDescription,
		IdempotencyKey:   idempotencyKey,
	}
}

func toStaffInput(req staffRequest) ports.StaffInput {
	return ports.StaffInput{Name: req.Name, Phone: req.Phone, Role: req.Role}
}

func toDestinationInput(req destinationRequest) ports.DestinationInput {
	in := ports.DestinationInput{Name: req.Name, Region: req.Region}
	if req.BaseFee != nil {
		in.BaseFee = *req.BaseFee
	}
	return in
}

func toAppendEntryInput(req appendEntryRequest) ports.AppendEntryInput {
	in := ports.AppendEntryInput{
		Type:     req.Type,
		StaffID:  req.StaffID,
		ParcelID: req.ParcelID,
		Currency: req.Currency,
	}
	if req.Amount != nil {
		in.Amount = *req.Amount
	}
	return in
}

// --- Domain → HTTP response ---

func toParcelResponse(p *domain.Parcel) parcelResponse {
	return parcelResponse{
		ID:               p.ID,
		TrackingCode:     p.TrackingCode,
		CreatedBy:        p.CreatedBy,
		SenderName:       p.SenderName,
		SenderPhone:      p.SenderPhone,
		RecipientName:    p.RecipientName,
		RecipientPhone:   p.RecipientPhone,
		DestinationID:    p.DestinationID,
		ShortDescription: p.ShortDescription,
		Status:           p.Status,
		LedgerPosted:     p.LedgerPosted,
		CreatedAt:        p.CreatedAt.UTC(),
		UpdatedAt:        p.UpdatedAt.UTC(),
	}
}

func toParcelResponses(ps []*domain.Parcel) []parcelResponse {
	out := make([]parcelResponse, 0, len(ps))
	for _, p := range ps {
		out = append(out, toParcelResponse(p))
	}
	return out
}

func toStaffResponse(s *domain.Staff) staffResponse {
	return staffResponse{
		ID:        s.ID,
		Name:      s.Name,
		Phone:     s.Phone,
		Role:      s.Role,
		CreatedAt: s.CreatedAt.UTC(),
	}
}

func toDestinationResponse(d *domain.Destination) destinationResponse {
	return destinationResponse{ID: d.ID, Name: d.Name, Region: d.Region, BaseFee: d.BaseFee}
}

func toEntryResponse(e domain.LedgerEntry) entryResponse {
	return entryResponse{
		ID:        e.ID,
		Type:      e.Type,
		Amount:    e.Amount,
		Currency:  e.Currency,
		StaffID:   e.StaffID,
		ParcelID:  e.ParcelID,
		CreatedAt: e.CreatedAt.UTC(),
	}
}

func toEntryResponses(entries []domain.LedgerEntry) []entryResponse {
	out := make([]entryResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, toEntryResponse(e))
	}
	return out
}

func toTotalsResponse(t domain.Totals) totalsResponse {
	return totalsResponse{Income: t.Income, Expenses: t.Expenses, Net: t.Net}
}

func toWalletResponse(w *ports.WalletView) walletResponse {
	resp := walletResponse{
		StaffID: w.StaffID,
		Balance: w.Balance,
		Totals:  toTotalsResponse(w.Totals),
		Recent:  toEntryResponses(w.Recent),
	}
	if !w.LastUpdated.IsZero() {
		at := w.LastUpdated.UTC()
		resp.LastUpdated = &at
	}
	return resp
}

func warningText(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
