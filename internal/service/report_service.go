package service

import (
	"github.com/salao-caixa/caixa-backend/internal/domain"
)

// AssembleReport joins each movement to its referenced service name.
// Rows keep the order of the movements. A missing reference or a service
// that no longer exists leaves ServiceName nil.
func AssembleReport(movements []*domain.Movement, services []*domain.Service) []*domain.ReportRow {
	names := make(map[string]string, len(services))
	for _, svc := range services {
		names[svc.ID] = svc.Name
	}

	rows := make([]*domain.ReportRow, 0, len(movements))
	for _, m := range movements {
		row := &domain.ReportRow{
			ID:            m.ID,
			Timestamp:     m.Timestamp,
			Kind:          m.Kind,
			Category:      m.Category,
			Amount:        m.Amount,
			Description:   m.Description,
			PaymentMethod: m.PaymentMethod,
		}
		if m.ServiceRef != nil {
			if name, ok := names[*m.ServiceRef]; ok {
				row.ServiceName = &name
			}
		}
		rows = append(rows, row)
	}
	return rows
}
