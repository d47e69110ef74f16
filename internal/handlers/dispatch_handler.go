package handlers

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/imrishuroy/dispatch-board/internal/dispatch"
	"github.com/imrishuroy/dispatch-board/internal/logger"
	"github.com/imrishuroy/dispatch-board/internal/metrics"
	"github.com/imrishuroy/dispatch-board/internal/validation"
)

// DispatchPath is where both the ingestion and snapshot calls live.
const DispatchPath = "/api/dispatch"

// Notifier is told about every record the ingestion endpoint creates.
type Notifier interface {
	NotifyDispatch(ctx context.Context, rec dispatch.Record) error
}

// HandlerConfig groups dependencies for the dispatch handlers.
type HandlerConfig struct {
	Store    *dispatch.Store
	Notifier Notifier     // optional
	Metrics  metrics.Sink // optional
	Log      logger.Logger
}

func (cfg *HandlerConfig) setDefaults() {
	if cfg.Store == nil {
		cfg.Store = dispatch.NewStore()
	}
	if cfg.Metrics == nil {
		cfg.Metrics = metrics.NopSink{}
	}
	if cfg.Log == nil {
		cfg.Log = logger.NopLogger{}
	}
}

// RegisterDispatchRoutes registers the ingestion (POST) and snapshot (GET)
// endpoints. Other methods on the path answer 405.
func RegisterDispatchRoutes(r *gin.Engine, cfg HandlerConfig) {
	cfg.setDefaults()
	v := validation.New()

	r.HandleMethodNotAllowed = true
	r.NoMethod(func(c *gin.Context) {
		c.JSON(http.StatusMethodNotAllowed, gin.H{"error": "method_not_allowed"})
	})

	r.POST(DispatchPath, func(c *gin.Context) {
		var req validation.CreateDispatchRequest
		if err := validation.BindAndValidate(c, &req, v); err != nil {
			// BindAndValidate already wrote a 400
			cfg.Log.Warnf("rejected dispatch submission: %v", err)
			return
		}

		rec := cfg.Store.Append(buildRecord(req, c.Request.Host))
		cfg.Log.Infof("new dispatch id=%s action=%s service=%s", rec.ID, rec.Action, rec.Service)

		if err := cfg.Metrics.RecordIngested(rec.Action); err != nil {
			cfg.Log.Warnf("record ingest metric: %v", err)
		}
		if cfg.Notifier != nil {
			// The record is already visible to dashboards; a failed fan-out
			// must not turn the submission into an error.
			if err := cfg.Notifier.NotifyDispatch(c.Request.Context(), rec); err != nil {
				cfg.Log.Errorf("notify dispatch id=%s: %v", rec.ID, err)
			}
		}

		c.Header("Location", fmt.Sprintf("%s/%s", DispatchPath, rec.ID))
		c.JSON(http.StatusCreated, rec)
	})

	r.GET(DispatchPath, func(c *gin.Context) {
		active := cfg.Store.SnapshotActive()
		if len(active) == 0 {
			if err := cfg.Metrics.RecordSnapshot(metrics.SnapshotNoContent, 0); err != nil {
				cfg.Log.Warnf("record snapshot metric: %v", err)
			}
			c.Status(http.StatusNoContent)
			return
		}
		if err := cfg.Metrics.RecordSnapshot(metrics.SnapshotOK, len(active)); err != nil {
			cfg.Log.Warnf("record snapshot metric: %v", err)
		}
		c.JSON(http.StatusOK, active)
	})
}

// buildRecord normalizes a submission. Service falls back to the Host the
// submission arrived on.
func buildRecord(req validation.CreateDispatchRequest, host string) dispatch.Record {
	service := strings.TrimSpace(req.Service)
	if service == "" {
		service = host
	}
	return dispatch.Record{
		Service:         service,
		Action:          strings.TrimSpace(req.Action),
		Status:          req.Status,
		Profile:         normalizeProfile(req.Profile),
		Highlights:      req.Highlights,
		Recommendations: req.Recommendations,
		Medications:     req.Medications,
		Urgency:         dispatch.UrgencyUnset,
		Archived:        false,
	}
}

// normalizeProfile flattens an emergency contact sent as {name, phone} into
// "name - phone". Every other key passes through untouched.
func normalizeProfile(in map[string]interface{}) dispatch.Profile {
	p := dispatch.Profile(in).Clone()
	contact, ok := p[dispatch.ProfileEmergencyContact].(map[string]interface{})
	if !ok {
		return p
	}
	name, _ := contact["name"].(string)
	phone, _ := contact["phone"].(string)
	switch {
	case name != "" && phone != "":
		p[dispatch.ProfileEmergencyContact] = name + " - " + phone
	case name != "":
		p[dispatch.ProfileEmergencyContact] = name
	case phone != "":
		p[dispatch.ProfileEmergencyContact] = phone
	default:
		delete(p, dispatch.ProfileEmergencyContact)
	}
	return p
}
