// Package handlers wires the entity sub-routers onto the API router
// with the role policy: reads for every authenticated member, creates
// and owned updates for member and up, workflow decisions for officer
// and up, hard deletes for admin only.
package handlers

import (
	"github.com/go-chi/chi/v5"

	"github.com/geijin5/APSAR-Tracker-sub001/internal/auth"
	"github.com/geijin5/APSAR-Tracker-sub001/internal/config"
	"github.com/geijin5/APSAR-Tracker-sub001/internal/handlers/appointments"
	"github.com/geijin5/APSAR-Tracker-sub001/internal/handlers/assets"
	"github.com/geijin5/APSAR-Tracker-sub001/internal/handlers/callouts"
	"github.com/geijin5/APSAR-Tracker-sub001/internal/handlers/categories"
	"github.com/geijin5/APSAR-Tracker-sub001/internal/handlers/certificates"
	"github.com/geijin5/APSAR-Tracker-sub001/internal/handlers/chat"
	"github.com/geijin5/APSAR-Tracker-sub001/internal/handlers/maintenance"
	"github.com/geijin5/APSAR-Tracker-sub001/internal/handlers/notifications"
	"github.com/geijin5/APSAR-Tracker-sub001/internal/handlers/quotes"
	"github.com/geijin5/APSAR-Tracker-sub001/internal/handlers/reports"
	"github.com/geijin5/APSAR-Tracker-sub001/internal/handlers/templates"
	"github.com/geijin5/APSAR-Tracker-sub001/internal/handlers/training"
	"github.com/geijin5/APSAR-Tracker-sub001/internal/handlers/users"
	"github.com/geijin5/APSAR-Tracker-sub001/internal/handlers/workorders"
	"github.com/geijin5/APSAR-Tracker-sub001/internal/integration"
	"github.com/geijin5/APSAR-Tracker-sub001/internal/middleware"
	"github.com/geijin5/APSAR-Tracker-sub001/internal/models"
	"github.com/geijin5/APSAR-Tracker-sub001/internal/repo"
	"github.com/geijin5/APSAR-Tracker-sub001/internal/uploads"
)

// RegisterRoutes mounts every API route on r. The auth endpoints and
// the webhook receiver are mounted separately in main since they run
// outside RequireAuth.
func RegisterRoutes(r chi.Router, store repo.Store, tm *auth.TokenManager, files *uploads.Store, cfg config.Config) {
	requireAuth := middleware.RequireAuth(tm, store)
	members := middleware.RequireRole(models.RoleAdmin, models.RoleOfficer, models.RoleMember)
	officer := middleware.Elevated()
	admin := middleware.RequireRole(models.RoleAdmin)

	assetH := assets.New(store, files)
	woH := workorders.New(store)
	maintH := maintenance.New(store)
	apptH := appointments.New(store)
	coH := callouts.New(store, files)
	certH := certificates.New(store, files)
	trainH := training.New(store)
	tmplH := templates.New(store)
	notifH := notifications.New(store)
	chatH := chat.New(store)
	quoteH := quotes.New(store)
	userH := users.New(store)
	catH := categories.New(store)
	repH := reports.New(store)
	intH := integration.New(store, cfg)

	r.Group(func(r chi.Router) {
		r.Use(requireAuth)

		r.Route("/assets", func(r chi.Router) {
			r.Get("/", assetH.List)
			r.With(members).Post("/", assetH.Create)
			r.Get("/{id}", assetH.Get)
			r.With(members).Put("/{id}", assetH.Update)
			r.With(admin).Delete("/{id}", assetH.Delete)
			r.With(members).Post("/{id}/notes", assetH.AddNote)
			r.With(members).Post("/{id}/images", assetH.UploadImage)
		})

		r.Route("/work-orders", func(r chi.Router) {
			r.Get("/", woH.List)
			r.With(members).Post("/", woH.Create)
			r.Get("/{id}", woH.Get)
			r.With(members).Put("/{id}", woH.Update)
			r.With(officer).Patch("/{id}/status", woH.UpdateStatus)
			r.With(admin).Delete("/{id}", woH.Delete)
			r.With(members).Post("/{id}/notes", woH.AddNote)
		})

		r.Route("/maintenance", func(r chi.Router) {
			r.Get("/", maintH.List)
			r.With(members).Post("/", maintH.Create)
			r.Get("/{id}", maintH.Get)
			r.With(members).Put("/{id}", maintH.Update)
			r.With(members).Patch("/{id}/complete", maintH.Complete)
			r.With(admin).Delete("/{id}", maintH.Delete)
		})

		r.Route("/appointments", func(r chi.Router) {
			r.Get("/", apptH.List)
			r.With(members).Post("/", apptH.Create)
			r.Get("/{id}", apptH.Get)
			r.With(members).Put("/{id}", apptH.Update)
			r.With(admin).Delete("/{id}", apptH.Delete)
			r.With(members).Patch("/{id}/rsvp", apptH.RSVP)
		})

		r.Route("/callouts", func(r chi.Router) {
			r.Get("/", coH.List)
			r.With(officer).Post("/", coH.Create)
			r.Get("/{id}", coH.Get)
			r.With(officer).Put("/{id}", coH.Update)
			r.With(admin).Delete("/{id}", coH.Delete)
			r.With(members).Post("/{id}/check-in", coH.CheckIn)
			r.With(members).Post("/{id}/check-out", coH.CheckOut)
			r.With(members).Post("/{id}/reports", coH.CreateReport)
		})

		r.Route("/callout-reports", func(r chi.Router) {
			r.Get("/", coH.ListReports)
			r.Get("/{id}", coH.GetReport)
			r.With(members).Put("/{id}", coH.UpdateReport)
			r.With(members).Patch("/{id}/status", coH.UpdateReportStatus)
			r.With(members).Post("/{id}/attachments", coH.UploadAttachment)
			r.With(admin).Delete("/{id}", coH.DeleteReport)
		})

		r.Route("/certificates", func(r chi.Router) {
			r.Get("/", certH.List)
			r.With(members).Post("/", certH.Create)
			r.Get("/{id}", certH.Get)
			r.With(members).Put("/{id}", certH.Update)
			r.With(admin).Delete("/{id}", certH.Delete)
			r.With(members).Post("/{id}/files", certH.UploadFile)
		})

		r.Route("/training", func(r chi.Router) {
			r.Get("/", trainH.List)
			r.With(members).Post("/", trainH.Create)
			r.Get("/{id}", trainH.Get)
			r.With(members).Put("/{id}", trainH.Update)
			r.With(officer).Patch("/{id}/approve", trainH.Approve)
			r.With(officer).Patch("/{id}/reject", trainH.Reject)
			r.With(admin).Delete("/{id}", trainH.Delete)
		})

		// The three template collections share one handler set; the
		// mount prefix fixes the kind.
		templateRoutes := func(k models.TemplateKind) func(chi.Router) {
			return func(r chi.Router) {
				r.Use(templates.WithKind(k))
				r.Get("/", tmplH.List)
				r.With(members).Post("/", tmplH.Create)
				r.Get("/{id}", tmplH.Get)
				r.With(members).Put("/{id}", tmplH.Update)
				r.With(admin).Delete("/{id}", tmplH.Delete)
				r.With(members).Post("/{id}/use", tmplH.Use)
			}
		}
		r.Route("/checklist-templates", templateRoutes(models.TemplateChecklist))
		r.Route("/maintenance-templates", templateRoutes(models.TemplateMaintenance))
		r.Route("/work-order-templates", templateRoutes(models.TemplateWorkOrder))

		r.Route("/completed-checklists", func(r chi.Router) {
			r.Get("/", tmplH.ListCompleted)
			r.With(members).Post("/", tmplH.CreateCompleted)
			r.Get("/{id}", tmplH.GetCompleted)
			r.With(members).Put("/{id}", tmplH.UpdateCompleted)
			r.With(admin).Delete("/{id}", tmplH.DeleteCompleted)
		})

		r.Route("/notifications", func(r chi.Router) {
			r.Get("/", notifH.List)
			r.Get("/unread-count", notifH.UnreadCount)
			r.Patch("/{id}/read", notifH.MarkRead)
			r.Patch("/read-all", notifH.MarkAllRead)
			r.With(officer).Post("/", notifH.Create)
		})

		// Broadcast is a body flag, so its officer check lives in the
		// handler rather than here.
		r.Route("/chat/messages", func(r chi.Router) {
			r.Get("/", chatH.List)
			r.With(members).Post("/", chatH.Send)
			r.With(admin).Delete("/", chatH.Clear)
			r.Patch("/{id}/read", chatH.MarkRead)
		})

		r.Route("/quotes", func(r chi.Router) {
			r.Get("/", quoteH.List)
			r.With(members).Post("/", quoteH.Create)
			r.Get("/{id}", quoteH.Get)
			r.With(members).Put("/{id}", quoteH.Update)
			r.With(officer).Patch("/{id}/approve", quoteH.Approve)
			r.With(officer).Patch("/{id}/reject", quoteH.Reject)
			r.With(admin).Delete("/{id}", quoteH.Delete)
		})

		r.Route("/users", func(r chi.Router) {
			r.Get("/", userH.List)
			r.Get("/{id}", userH.Get)
			r.With(admin).Put("/{id}", userH.Update)
			r.With(admin).Delete("/{id}", userH.Delete)
		})

		r.Route("/categories", func(r chi.Router) {
			r.Get("/", catH.List)
			r.With(officer).Post("/", catH.Create)
			r.With(admin).Delete("/{id}", catH.Delete)
		})

		r.With(officer).Route("/reports", func(r chi.Router) {
			r.Get("/assets", repH.Assets)
			r.Get("/work-orders", repH.WorkOrders)
			r.Get("/maintenance", repH.Maintenance)
			r.Get("/callouts", repH.Callouts)
		})

		r.Get("/integration/status", intH.Status)
		r.With(officer).Post("/integration/test", intH.Test)
	})

	// Secret-authenticated, no session.
	r.Post("/integration/webhook", intH.Receive)
}
