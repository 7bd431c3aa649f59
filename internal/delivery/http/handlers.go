package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"github.com/fadehouse/compensation-service/internal/domain"
	"github.com/fadehouse/compensation-service/internal/usecase"
	"github.com/fadehouse/compensation-service/internal/usecase/commission"
	matrixdto "github.com/fadehouse/compensation-service/internal/usecase/dto/matrix"
	payoutdto "github.com/fadehouse/compensation-service/internal/usecase/dto/payout"
	rankdto "github.com/fadehouse/compensation-service/internal/usecase/dto/rank"
)

type Handler struct {
	matrixUsecase     usecase.MatrixUsecase
	rankUsecase       usecase.RankUsecase
	commissionUsecase commission.CommissionUsecase
	ledgerUsecase     usecase.LedgerUsecase
	payoutUsecase     usecase.PayoutUsecase
	members           domain.MemberDirectory
	validate          *validator.Validate
}

func NewHandler(
	matrixUsecase usecase.MatrixUsecase,
	rankUsecase usecase.RankUsecase,
	commissionUsecase commission.CommissionUsecase,
	ledgerUsecase usecase.LedgerUsecase,
	payoutUsecase usecase.PayoutUsecase,
	members domain.MemberDirectory,
) *Handler {
	return &Handler{
		matrixUsecase:     matrixUsecase,
		rankUsecase:       rankUsecase,
		commissionUsecase: commissionUsecase,
		ledgerUsecase:     ledgerUsecase,
		payoutUsecase:     payoutUsecase,
		members:           members,
		validate:          validator.New(),
	}
}

func (h *Handler) bindAndValidate(c echo.Context, req interface{}) error {
	if err := c.Bind(req); err != nil {
		return err
	}
	return h.validate.Struct(req)
}

// PlaceMember enrolls a member into the placement tree under their sponsor,
// spilling over breadth-first when the sponsor's row is full.
func (h *Handler) PlaceMember(c echo.Context) error {
	var req placeMemberRequest
	if err := h.bindAndValidate(c, &req); err != nil {
		return writeBadRequest(c, err)
	}

	node, err := h.matrixUsecase.Place(c.Request().Context(), &matrixdto.PlaceInput{
		MemberID:  req.MemberID,
		SponsorID: req.SponsorID,
	})
	if err != nil {
		return writeDomainError(c, err)
	}
	return c.JSON(http.StatusCreated, toPlacementResponse(node))
}

func (h *Handler) GetPlacement(c echo.Context) error {
	node, err := h.matrixUsecase.Node(c.Request().Context(), c.Param("memberId"))
	if err != nil {
		return writeDomainError(c, err)
	}
	return c.JSON(http.StatusOK, toPlacementResponse(node))
}

func (h *Handler) RemoveConnection(c echo.Context) error {
	var req removeConnectionRequest
	if err := h.bindAndValidate(c, &req); err != nil {
		return writeBadRequest(c, err)
	}

	err := h.matrixUsecase.RemoveConnection(c.Request().Context(), &matrixdto.RemoveConnectionInput{
		MemberID: c.Param("memberId"),
		Reason:   req.Reason,
	})
	if err != nil {
		return writeDomainError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// EvaluateRank re-evaluates a member's rank. Facts may arrive in the body;
// when absent they are fetched from the identity service.
func (h *Handler) EvaluateRank(c echo.Context) error {
	memberID := c.Param("memberId")

	var req evaluateRankRequest
	facts := &domain.RankFacts{}
	if c.Request().ContentLength > 0 {
		if err := h.bindAndValidate(c, &req); err != nil {
			return writeBadRequest(c, err)
		}
		facts.PersonallyEnrolledActive = req.PersonallyEnrolledActive
		facts.Gates = make(map[domain.Gate]bool, len(req.Gates))
		for gate, verdict := range req.Gates {
			facts.Gates[domain.Gate(gate)] = verdict
		}
	} else {
		fetched, err := h.members.GetEnrollmentFacts(c.Request().Context(), memberID)
		if err != nil {
			return writeDomainError(c, err)
		}
		facts = fetched
	}

	rank, err := h.rankUsecase.Evaluate(c.Request().Context(), &rankdto.EvaluateInput{
		MemberID: memberID,
		Facts:    *facts,
	})
	if err != nil {
		return writeDomainError(c, err)
	}
	return c.JSON(http.StatusOK, rankResponse{MemberID: memberID, Rank: rank.String()})
}

func (h *Handler) GetRank(c echo.Context) error {
	memberID := c.Param("memberId")
	rank, err := h.rankUsecase.CurrentRank(c.Request().Context(), memberID)
	if err != nil {
		return writeDomainError(c, err)
	}
	return c.JSON(http.StatusOK, rankResponse{MemberID: memberID, Rank: rank.String()})
}

func (h *Handler) DemoteRank(c echo.Context) error {
	var req demoteRankRequest
	if err := h.bindAndValidate(c, &req); err != nil {
		return writeBadRequest(c, err)
	}
	target, err := domain.ParseRank(req.To)
	if err != nil {
		return writeBadRequest(c, err)
	}

	err = h.rankUsecase.Demote(c.Request().Context(), &rankdto.DemoteInput{
		MemberID: c.Param("memberId"),
		To:       target,
		Reason:   req.Reason,
	})
	if err != nil {
		return writeDomainError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) GetRankProgress(c echo.Context) error {
	memberID := c.Param("memberId")
	facts, err := h.members.GetEnrollmentFacts(c.Request().Context(), memberID)
	if err != nil {
		return writeDomainError(c, err)
	}
	progress, err := h.rankUsecase.ProgressToNext(c.Request().Context(), memberID, facts)
	if err != nil {
		return writeDomainError(c, err)
	}

	resp := rankProgressResponse{
		Current:    progress.Current.String(),
		Required:   progress.Required,
		Enrolled:   progress.Enrolled,
		Percentage: progress.Percentage,
	}
	if progress.Next != nil {
		resp.Next = progress.Next.String()
	}
	return c.JSON(http.StatusOK, resp)
}

func (h *Handler) GetBalance(c echo.Context) error {
	memberID := c.Param("memberId")
	available, err := h.ledgerUsecase.AvailableBalance(c.Request().Context(), memberID)
	if err != nil {
		return writeDomainError(c, err)
	}
	paid, err := h.ledgerUsecase.PaidTotal(c.Request().Context(), memberID)
	if err != nil {
		return writeDomainError(c, err)
	}
	return c.JSON(http.StatusOK, balanceResponse{
		MemberID:  memberID,
		Available: available,
		PaidTotal: paid,
	})
}

func (h *Handler) ListCommissions(c echo.Context) error {
	status := domain.CommissionStatus(c.QueryParam("status"))
	events, err := h.commissionUsecase.ListMemberCommissions(c.Request().Context(), c.Param("memberId"), status)
	if err != nil {
		return writeDomainError(c, err)
	}

	resp := make([]commissionResponse, 0, len(events))
	for _, event := range events {
		resp = append(resp, commissionResponse{
			ID:             event.ID,
			MemberID:       event.MemberID,
			Type:           string(event.Type),
			SourceMemberID: event.SourceMemberID,
			SourceEventID:  event.SourceEventID,
			Level:          event.Level,
			Amount:         event.Amount,
			Status:         string(event.Status),
			CreatedAt:      event.CreatedAt.Format(time.RFC3339),
		})
	}
	return c.JSON(http.StatusOK, resp)
}

func (h *Handler) VoidCommission(c echo.Context) error {
	var req voidCommissionRequest
	if err := h.bindAndValidate(c, &req); err != nil {
		return writeBadRequest(c, err)
	}
	if err := h.ledgerUsecase.Void(c.Request().Context(), c.Param("eventId"), req.Reason); err != nil {
		return writeDomainError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) RequestPayout(c echo.Context) error {
	var req requestPayoutRequest
	if err := h.bindAndValidate(c, &req); err != nil {
		return writeBadRequest(c, err)
	}

	request, err := h.payoutUsecase.RequestPayout(c.Request().Context(), &payoutdto.RequestPayoutInput{
		MemberID:      req.MemberID,
		Method:        domain.PayoutMethod(req.Method),
		MethodDetails: req.MethodDetails,
		Amount:        req.Amount,
	})
	if err != nil {
		return writeDomainError(c, err)
	}
	return c.JSON(http.StatusCreated, toPayoutResponse(request))
}

func (h *Handler) ListPayouts(c echo.Context) error {
	requests, err := h.payoutUsecase.ListRequests(c.Request().Context(), c.Param("memberId"))
	if err != nil {
		return writeDomainError(c, err)
	}
	resp := make([]payoutResponse, 0, len(requests))
	for _, request := range requests {
		resp = append(resp, toPayoutResponse(request))
	}
	return c.JSON(http.StatusOK, resp)
}

func (h *Handler) settlePayout(c echo.Context, settle func(*payoutdto.SettleInput) error) error {
	var req settlePayoutRequest
	if c.Request().ContentLength > 0 {
		if err := c.Bind(&req); err != nil {
			return writeBadRequest(c, err)
		}
	}
	err := settle(&payoutdto.SettleInput{
		RequestID: c.Param("requestId"),
		AdminNote: req.AdminNote,
	})
	if err != nil {
		return writeDomainError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) ApprovePayout(c echo.Context) error {
	return h.settlePayout(c, func(input *payoutdto.SettleInput) error {
		return h.payoutUsecase.Approve(c.Request().Context(), input)
	})
}

func (h *Handler) RejectPayout(c echo.Context) error {
	return h.settlePayout(c, func(input *payoutdto.SettleInput) error {
		return h.payoutUsecase.Reject(c.Request().Context(), input)
	})
}

func (h *Handler) MarkPayoutPaid(c echo.Context) error {
	return h.settlePayout(c, func(input *payoutdto.SettleInput) error {
		return h.payoutUsecase.MarkRequestPaid(c.Request().Context(), input)
	})
}

// HandleBillingEvent is the HTTP mirror of the billing-events consumer, used
// by the billing service's webhook fallback and by operators for replays.
func (h *Handler) HandleBillingEvent(c echo.Context) error {
	var req billingEventRequest
	if err := h.bindAndValidate(c, &req); err != nil {
		return writeBadRequest(c, err)
	}

	events, err := h.commissionUsecase.OnQualifyingEvent(c.Request().Context(), &domain.QualifyingEvent{
		EventID:      req.EventID,
		Type:         domain.BillingEventType(req.Type),
		MemberID:     req.MemberID,
		SponsorID:    req.SponsorID,
		AmountBilled: req.AmountBilled,
	})
	if err != nil {
		slog.Error("billing event processing failed", "event_id", req.EventID, "error", err.Error())
		return writeDomainError(c, err)
	}

	resp := billingEventResponse{EventID: req.EventID, Duplicate: events == nil}
	for _, event := range events {
		resp.CommissionsCreated++
		resp.TotalAccrued += event.Amount
	}
	return c.JSON(http.StatusOK, resp)
}

func toPlacementResponse(node *domain.MatrixNode) placementResponse {
	resp := placementResponse{
		NodeID:   node.ID,
		MemberID: node.MemberID,
		Position: node.Position,
		PlacedAt: node.PlacedAt.Format(time.RFC3339),
	}
	if node.ParentID != nil {
		resp.ParentID = *node.ParentID
	}
	return resp
}

func toPayoutResponse(request *domain.PayoutRequest) payoutResponse {
	return payoutResponse{
		ID:          request.ID,
		MemberID:    request.MemberID,
		Amount:      request.Amount,
		Method:      string(request.Method),
		Status:      string(request.Status),
		Note:        request.Note,
		RequestedAt: request.RequestedAt,
		ProcessedAt: request.ProcessedAt,
	}
}
