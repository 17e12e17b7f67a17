package router

import (
	"net/http"

	"github.com/senyabanana/tender-portal/internal/handlers"
	"github.com/senyabanana/tender-portal/internal/middleware"

	"github.com/sirupsen/logrus"
)

func InitRoutes(tenderHandler *handlers.TenderHandler, bidHandler *handlers.BidHandler, accessHandler *handlers.AccessHandler, limiter *middleware.RateLimiter, logger *logrus.Logger) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/ping", handlers.PingHandler)

	mux.HandleFunc("GET /api/tenders", tenderHandler.GetTenders)
	mux.HandleFunc("POST /api/tenders", tenderHandler.CreateTender)
	mux.HandleFunc("GET /api/tenders/{tenderId}", tenderHandler.GetTender)
	mux.HandleFunc("POST /api/tenders/{tenderId}/close", tenderHandler.CloseTender)
	mux.HandleFunc("POST /api/tenders/{tenderId}/lots", tenderHandler.CreateLot)
	mux.HandleFunc("GET /api/lots/{lotId}", tenderHandler.GetLot)

	mux.HandleFunc("POST /api/lots/{lotId}/bids", bidHandler.SubmitBid)
	mux.HandleFunc("POST /api/lots/{lotId}/bids/{bidId}/select", bidHandler.ToggleSelection)
	mux.HandleFunc("POST /api/lots/{lotId}/bids/{bidId}/favorite", bidHandler.ToggleFavorite)
	mux.HandleFunc("POST /api/lots/{lotId}/bids/{bidId}/compliance", bidHandler.MarkCompliance)
	mux.HandleFunc("GET /api/lots/{lotId}/budget-impact", bidHandler.GetBudgetImpact)
	mux.HandleFunc("GET /api/bids/{bidId}", bidHandler.GetBid)
	mux.HandleFunc("POST /api/bids/{bidId}/compliance", bidHandler.MarkCompliance)
	mux.HandleFunc("GET /api/bids/{bidA}/compare/{bidB}", bidHandler.CompareBids)

	mux.HandleFunc("POST /api/lots/{lotId}/access-requests", accessHandler.RequestAccess)
	mux.HandleFunc("GET /api/lots/{lotId}/access-requests", accessHandler.ListAccessRequests)
	mux.HandleFunc("GET /api/lots/{lotId}/visibility", accessHandler.GetVisibility)
	mux.HandleFunc("GET /api/access-requests/{requestId}", accessHandler.GetAccessRequest)
	mux.HandleFunc("POST /api/access-requests/{requestId}/decide", accessHandler.Decide)

	var handler http.Handler = mux
	if limiter != nil {
		handler = limiter.Middleware(handler)
	}
	return middleware.RequestLogger(logger)(handler)
}
