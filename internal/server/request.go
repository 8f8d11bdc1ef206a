// internal/server/request.go
//
// 請求結構與驗證。格式檢核（必填、長度、選項）在此層以 validator 完成；
// 「標題去除空白後不可為空」等領域規則仍由 classroom 負責。

package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"

	"codeshare/internal/classroom"
)

// MaxCodeBytes 為單次送出的程式碼上限。
const MaxCodeBytes = 256 * 1024

// maxBodyBytes 為請求 body 上限，略大於程式碼上限以容納 JSON 跳脫字元。
const maxBodyBytes = 2 * MaxCodeBytes

var errBadIndex = errors.New("snapshot index must be an integer")

var validate *validator.Validate

func init() {
	validate = validator.New()
	_ = validate.RegisterValidation("maxbytes", func(fl validator.FieldLevel) bool {
		return len(fl.Field().String()) <= MaxCodeBytes
	})
}

type createSessionRequest struct {
	Name string `json:"name" validate:"max=120"`
}

// Code 以指標區分「未提供」與「清空為空字串」。
type editCodeRequest struct {
	Code *string `json:"code" validate:"required,maxbytes"`
}

type createSnapshotRequest struct {
	Title       string `json:"title" validate:"required,max=200"`
	Description string `json:"description" validate:"max=2000"`
}

type userPayload struct {
	Name         string `json:"name" validate:"max=80"`
	IsInstructor bool   `json:"is_instructor"`
}

func (u userPayload) toUser() classroom.User {
	return classroom.User{Name: u.Name, IsInstructor: u.IsInstructor}
}

type messageRequest struct {
	Text string      `json:"text" validate:"required,max=4000"`
	User userPayload `json:"user"`
}

type voteRequest struct {
	Voter  string `json:"voter" validate:"required,max=80"`
	Choice string `json:"choice" validate:"required,oneof=understood need_more not_understood"`
}

type resetPollRequest struct {
	Prompt string `json:"prompt" validate:"max=300"`
}

// decode 解析 JSON body 並執行結構驗證；失敗時直接寫出 400 並回傳 false。
// allowEmpty 為 true 時，空 body 視為零值請求。
func decode(w http.ResponseWriter, r *http.Request, v any, allowEmpty bool) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		if !(allowEmpty && errors.Is(err, io.EOF)) {
			writeErr(w, fmt.Errorf("invalid JSON body: %w", err), http.StatusBadRequest)
			return false
		}
	}
	if err := validate.Struct(v); err != nil {
		writeErr(w, validationError(err), http.StatusBadRequest)
		return false
	}
	return true
}

// validationError 將 validator 錯誤整理成一行可讀訊息。
func validationError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		parts = append(parts, fmt.Sprintf("%s: failed %q", strings.ToLower(fe.Field()), fe.Tag()))
	}
	return errors.New("invalid request: " + strings.Join(parts, ", "))
}
