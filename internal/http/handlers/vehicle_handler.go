// README: Vehicle registration and lookup handlers.
package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"cabswift/internal/http/middleware"
	"cabswift/internal/modules/pricing"
	"cabswift/internal/modules/vehicle"
	"cabswift/internal/types"
)

type VehicleHandler struct {
	vehicle *vehicle.Service
}

func NewVehicleHandler(svc *vehicle.Service) *VehicleHandler {
	return &VehicleHandler{vehicle: svc}
}

type registerVehicleReq struct {
	Category       string `json:"category"`
	VehicleType    string `json:"vehicle_type"`
	Model          string `json:"model"`
	RegistrationNo string `json:"registration_no"`
	SeatCount      int    `json:"seat_count"`
	WorkingDays    []int  `json:"working_days"` // 0 = Sunday
	WorkStart      string `json:"work_start"`   // HH:MM
	WorkEnd        string `json:"work_end"`
}

func (h *VehicleHandler) Register(c *gin.Context) {
	var req registerVehicleReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	driverID := c.GetString(middleware.ContextUserID)
	if driverID == "" {
		writeError(c, http.StatusBadRequest, "missing driver identity")
		return
	}

	var sched vehicle.Schedule
	for _, d := range req.WorkingDays {
		if d >= 0 && d < 7 {
			sched.Days[d] = true
		}
	}
	sched.Start = req.WorkStart
	sched.End = req.WorkEnd

	id, err := h.vehicle.Register(c.Request.Context(), vehicle.RegisterCommand{
		DriverID: types.ID(driverID),
		PlanRef: pricing.PlanRef{
			Category:    pricing.Category(req.Category),
			VehicleType: req.VehicleType,
			Model:       req.Model,
		},
		RegistrationNo: req.RegistrationNo,
		SeatCount:      req.SeatCount,
		Schedule:       sched,
	})
	if err != nil {
		writeDomainError(c, err)
		return
	}
	writeJSON(c, http.StatusCreated, gin.H{"vehicle_id": id, "approval_status": vehicle.ApprovalPending})
}

func (h *VehicleHandler) Get(c *gin.Context) {
	v, err := h.vehicle.Get(c.Request.Context(), types.ID(c.Param("id")))
	if err != nil {
		writeDomainError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, gin.H{
		"vehicle_id":      v.ID,
		"driver_id":       v.DriverID,
		"category":        v.PlanRef.Category,
		"vehicle_type":    v.PlanRef.VehicleType,
		"model":           v.PlanRef.Model,
		"registration_no": v.RegistrationNo,
		"approval_status": v.ApprovalStatus,
		"booked":          v.Booked,
		"available_now":   v.AvailableAt(time.Now()),
		"rating": gin.H{
			"average":   v.Rating.Average,
			"count":     v.Rating.Count,
			"breakdown": v.Rating.Breakdown,
		},
	})
}
