package api

import (
	"context"
	"errors"
	"net/http"
	"sort"
	"time"

	"github.com/gin-gonic/gin"

	"token-minter/internal/apperr"
	"token-minter/internal/domain"
)

type postTransactionRequest struct {
	PublicKey string            `json:"publicKey"`
	TokenForm *domain.TokenForm `json:"tokenForm"`
}

type postTransactionResponse struct {
	Msg           string `json:"msg"`
	Transaction   string `json:"transaction"`
	TransactionID string `json:"transactionId"`
	Fee           string `json:"fee"`
}

type submitTransactionResponse struct {
	Msg         string `json:"msg"`
	Signature   string `json:"signature"`
	MintAddress string `json:"mintAddress"`
}

type errorResponse struct {
	Msg string `json:"msg"`
}

func (self *Server) onPostTransaction(c *gin.Context) {
	var in postTransactionRequest
	if err := c.ShouldBindJSON(&in); err != nil {
		self.fail(c, apperr.Validation("tokenForm", "Missing `publicKey` or `tokenForm`."))
		return
	}

	out, err := self.feeBuilder.Build(c.Request.Context(), in.PublicKey, in.TokenForm)
	if err != nil {
		self.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, postTransactionResponse{
		Msg:           "Transaction requested",
		Transaction:   out.Transaction,
		TransactionID: out.TransactionID,
		Fee:           out.Fee.String(),
	})
}

func (self *Server) onSubmitTransaction(c *gin.Context) {
	signedTx := c.PostForm("signedTx")
	transactionID := c.PostForm("transactionId")
	icon, err := c.FormFile("tokenIcon")
	if signedTx == "" || transactionID == "" || err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Msg: "Missing required form data."})
		return
	}
	if icon.Size > self.iconMaxBytes {
		self.fail(c, apperr.Validation("tokenIcon", "Token icon is too large."))
		return
	}

	f, err := icon.Open()
	if err != nil {
		self.fail(c, apperr.Validation("tokenIcon", "Missing required form data."))
		return
	}
	defer f.Close()

	out, err := self.submitter.Submit(c.Request.Context(), signedTx, transactionID, f)
	if err != nil {
		self.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, submitTransactionResponse{
		Msg:         "Transaction success!",
		Signature:   out.Signature,
		MintAddress: out.MintAddress,
	})
}

func (self *Server) onGetToken(c *gin.Context) {
	info, err := self.inspector.Inspect(c.Request.Context(), c.Param("address"))
	if err != nil {
		self.fail(c, err)
		return
	}

	resp := gin.H{"msg": "ok", "token": info}
	if info.Order != nil {
		resp["order"] = gin.H{
			"transactionId": info.Order.TransactionID,
			"status":        info.Order.Status,
			"createdAt":     info.Order.CreatedAt,
		}
	}
	c.JSON(http.StatusOK, resp)
}

func (self *Server) onGetHealth(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	names := make([]string, 0, len(self.checks))
	for name := range self.checks {
		names = append(names, name)
	}
	sort.Strings(names)

	status := http.StatusOK
	results := make(map[string]string, len(names))
	for _, name := range names {
		if err := self.checks[name](ctx); err != nil {
			self.log.WithError(err).WithField("check", name).Warn("Health check failed")
			results[name] = "down"
			status = http.StatusServiceUnavailable
			continue
		}
		results[name] = "ok"
	}

	msg := "ok"
	if status != http.StatusOK {
		msg = "degraded"
	}
	c.JSON(status, gin.H{"msg": msg, "checks": results})
}

// fail logs the full error and answers with the client-safe message.
func (self *Server) fail(c *gin.Context, err error) {
	status := apperr.HTTPStatus(err)

	entry := self.log.WithError(err).
		WithField("route", c.FullPath()).
		WithField("status", status)
	var appErr *apperr.Error
	if errors.As(err, &appErr) {
		entry = entry.WithField("kind", appErr.Kind.String())
		if appErr.Field != "" {
			entry = entry.WithField("field", appErr.Field)
		}
	}
	if status >= http.StatusInternalServerError {
		entry.Error("Request failed")
	} else {
		entry.Info("Request rejected")
	}

	c.AbortWithStatusJSON(status, errorResponse{Msg: apperr.PublicMessage(err)})
}
