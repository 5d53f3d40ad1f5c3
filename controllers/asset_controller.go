package controllers

import (
	"net/http"
	"strconv"

	"cart_ledger/app"
	"cart_ledger/ledger"

	"github.com/gin-gonic/gin"
)

type AssetController struct{ *Srv }

func NewAssetController(s *Srv) *AssetController { return &AssetController{Srv: s} }

type assetRef struct {
	Number int    `json:"number"`
	Cart   string `json:"cart"`
}

// 管理员登记一台设备
func (ac *AssetController) CreateAsset(c *gin.Context) {
	var in assetRef
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, "number and cart are required")
		return
	}
	res, err := ac.Ledger.RegisterAsset(c.Request.Context(), in.Number, in.Cart)
	respond(c, http.StatusCreated, res, err)
}

// 维修开关：{"number":1,"cart":"A","on":true}
func (ac *AssetController) SetMaintenance(c *gin.Context) {
	var in struct {
		assetRef
		On bool `json:"on"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, "number, cart and on are required")
		return
	}
	res, err := ac.Ledger.SetMaintenance(c.Request.Context(), in.Number, in.Cart, in.On)
	respond(c, http.StatusOK, res, err)
}

// 全部设备（含借出信息）
func (ac *AssetController) ListAssets(c *gin.Context) {
	rows, err := ac.Ledger.ListAllAssets(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, app.H{"items": rows})
}

func (ac *AssetController) ListAvailable(c *gin.Context) {
	rows, err := ac.Ledger.ListAvailableAssets(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, app.H{"items": rows})
}

func (ac *AssetController) ListLoaned(c *gin.Context) {
	rows, err := ac.Ledger.ListLoanedAssets(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, app.H{"items": rows})
}

func (ac *AssetController) Stats(c *gin.Context) {
	s, err := ac.Ledger.ComputeStats(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, s)
}

// 借出
func (ac *AssetController) Loan(c *gin.Context) {
	caller, ok := mustCaller(c)
	if !ok {
		return
	}
	var in struct {
		assetRef
		BorrowerName  string `json:"borrowerName"`
		BorrowerGroup string `json:"borrowerGroup"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, "number, cart and borrowerName are required")
		return
	}

	actedBy := caller.Name
	if actedBy == "" {
		actedBy = caller.Handle
	}
	res, err := ac.Ledger.LoanAsset(c.Request.Context(), ledger.LoanRequest{
		Number:        in.Number,
		Cart:          in.Cart,
		BorrowerName:  in.BorrowerName,
		BorrowerGroup: in.BorrowerGroup,
		ActedBy:       actedBy,
	})
	respond(c, http.StatusCreated, res, err)
}

// 归还
func (ac *AssetController) Return(c *gin.Context) {
	var in assetRef
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, "number and cart are required")
		return
	}
	res, err := ac.Ledger.ReturnAsset(c.Request.Context(), in.Number, in.Cart)
	respond(c, http.StatusOK, res, err)
}

// 借还记录 ?limit=
func (ac *AssetController) History(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "0"))
	es, err := ac.Ledger.ListHistory(c.Request.Context(), limit)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, app.H{"items": es})
}
