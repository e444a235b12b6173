package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hackgods/carehub/internal/consultation"
	"github.com/hackgods/carehub/internal/identity"
)

func requestConsultationHandler(svc *consultation.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req CreateConsultationRequest
		if !decodeJSON(w, r, &req) {
			return
		}

		caller := identity.FromContext(r.Context())
		patient := identity.Caller(req.PatientID)
		if patient.IsAnonymous() {
			patient = caller
		}

		id, err := svc.Request(r.Context(), caller, consultation.Request{
			PatientID:  patient,
			ProviderID: req.ProviderID,
			Time:       req.Time,
			Modality:   req.Modality,
			Notes:      req.Notes,
		})
		if err != nil {
			handleError(w, r, err)
			return
		}

		writeJSON(w, http.StatusCreated, CreatedResponse{ID: id})
	}
}

func listConsultationsHandler(svc *consultation.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := svc.ListForCaller(r.Context(), identity.FromContext(r.Context()))
		if err != nil {
			handleError(w, r, err)
			return
		}

		resp := make([]ConsultationResponse, 0, len(list))
		for _, c := range list {
			resp = append(resp, newConsultationResponse(c))
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

func getConsultationHandler(svc *consultation.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c, err := svc.Get(r.Context(), identity.FromContext(r.Context()), chi.URLParam(r, "id"))
		if err != nil {
			handleError(w, r, err)
			return
		}

		writeJSON(w, http.StatusOK, newConsultationResponse(*c))
	}
}

func updateConsultationStatusHandler(svc *consultation.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req UpdateStatusRequest
		if !decodeJSON(w, r, &req) {
			return
		}

		c, err := svc.UpdateStatus(r.Context(), identity.FromContext(r.Context()), chi.URLParam(r, "id"), consultation.Status(req.Status))
		if err != nil {
			handleError(w, r, err)
			return
		}

		writeJSON(w, http.StatusOK, newConsultationResponse(*c))
	}
}

func consultationHistoryHandler(svc *consultation.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		events, err := svc.History(r.Context(), identity.FromContext(r.Context()), chi.URLParam(r, "id"))
		if err != nil {
			handleError(w, r, err)
			return
		}

		resp := make([]EventResponse, 0, len(events))
		for _, ev := range events {
			resp = append(resp, EventResponse{
				ID:        ev.ID,
				Type:      ev.EventType,
				Payload:   ev.Payload,
				CreatedAt: ev.CreatedAt,
			})
		}
		writeJSON(w, http.StatusOK, resp)
	}
}
