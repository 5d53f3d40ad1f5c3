package controllers

import (
	"net/http"
	"strconv"

	"cart_ledger/app"

	"github.com/gin-gonic/gin"
)

type AccountController struct{ *Srv }

func NewAccountController(s *Srv) *AccountController { return &AccountController{Srv: s} }

// POST /api/admin/accounts
func (ac *AccountController) CreateAccount(c *gin.Context) {
	var in struct {
		Handle   string `json:"handle"`
		Password string `json:"password"`
		Name     string `json:"name"`
		Admin    bool   `json:"admin"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, "handle, password and name are required")
		return
	}
	res, err := ac.Ledger.RegisterAccount(c.Request.Context(), in.Handle, in.Password, in.Name, in.Admin)
	respond(c, http.StatusCreated, res, err)
}

// GET /api/admin/accounts?q=ana&page=1&size=20
func (ac *AccountController) ListAccounts(c *gin.Context) {
	q := c.Query("q")
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	size, _ := strconv.Atoi(c.DefaultQuery("size", "20"))

	res, err := ac.Ledger.ListAccounts(c.Request.Context(), q, page, size)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, app.H{
		"total":    res.Total,
		"accounts": res.Accounts,
	})
}
