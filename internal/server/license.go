package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	licensedomain "github.com/starter-spark/kitclaim/internal/license/domain"
)

type reconcileRequest struct {
	LicenseIDs []string `json:"licenseIds"`
	Action     string   `json:"action"`
}

type claimByCodeRequest struct {
	Code string `json:"code"`
}

type claimLinkRequest struct {
	ClaimToken string `json:"claimToken"`
}

// @Summary      Claim License
// @Description  Claim a pending license for the authenticated account
// @Tags         licenses
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "License ID"
// @Success      200  {object}  map[string]any
// @Router       /licenses/{id}/claim [post]
func (s *Server) ClaimLicense(c *gin.Context) {
	result, err := s.licenseSvc.Claim(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, claimResponse(result))
}

// @Summary      Reject License
// @Description  Permanently decline a pending license
// @Tags         licenses
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "License ID"
// @Success      200  {object}  map[string]any
// @Router       /licenses/{id}/reject [post]
func (s *Server) RejectLicense(c *gin.Context) {
	if _, err := s.licenseSvc.Reject(c.Request.Context(), c.Param("id")); err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"action":  "rejected",
		"message": "license rejected",
	})
}

// @Summary      Reconcile Licenses
// @Description  Apply one action across a set of licenses, reporting per-item outcomes
// @Tags         licenses
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body reconcileRequest true "Reconcile Request"
// @Success      200  {object}  map[string]any
// @Router       /licenses/reconcile [post]
func (s *Server) ReconcileLicenses(c *gin.Context) {
	var req reconcileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	result, err := s.licenseSvc.Reconcile(c.Request.Context(), licensedomain.ReconcileRequest{
		LicenseIDs: req.LicenseIDs,
		Action:     licensedomain.Action(strings.TrimSpace(req.Action)),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":      result.ErrorCount == 0,
		"results":      result.Results,
		"successCount": result.SuccessCount,
		"errorCount":   result.ErrorCount,
	})
}

// @Summary      Claim By Code
// @Description  Claim a license by its activation code
// @Tags         licenses
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body claimByCodeRequest true "Claim By Code Request"
// @Success      200  {object}  map[string]any
// @Router       /licenses/claim-by-code [post]
func (s *Server) ClaimByCode(c *gin.Context) {
	var req claimByCodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	result, err := s.licenseSvc.ClaimByCode(c.Request.Context(), req.Code)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, claimResponse(result))
}

// @Summary      Claim By Link
// @Description  Claim a license via an emailed claim-link token
// @Tags         licenses
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body claimLinkRequest true "Claim Link Request"
// @Success      200  {object}  map[string]any
// @Router       /licenses/claim-link [post]
func (s *Server) ClaimByLink(c *gin.Context) {
	var req claimLinkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	result, err := s.licenseSvc.ClaimByToken(c.Request.Context(), req.ClaimToken)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, claimResponse(result))
}

// @Summary      List Pending Licenses
// @Description  List unclaimed licenses matching the caller's purchase email
// @Tags         licenses
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  map[string]any
// @Router       /licenses/pending [get]
func (s *Server) ListPendingLicenses(c *gin.Context) {
	licenses, err := s.licenseSvc.ListPending(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": licenses})
}

// @Summary      List Kits
// @Description  List the caller's owned kits aggregated from claimed licenses
// @Tags         kits
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  map[string]any
// @Router       /kits [get]
func (s *Server) ListKits(c *gin.Context) {
	kits, err := s.kitSvc.ListKits(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": kits})
}

func claimResponse(result *licensedomain.ClaimResult) gin.H {
	message := "kit claimed"
	if result.ProductName != "" {
		message = "you now own " + result.ProductName
	}
	return gin.H{
		"success":     true,
		"action":      "claimed",
		"productName": result.ProductName,
		"message":     message,
	}
}
