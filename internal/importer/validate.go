package importer

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

var ErrInvalidRow = errors.New("invalid row")

// rowCheck 映射后的必填项校验
type rowCheck struct {
	ProductName string   `validate:"nonblank"`
	Date        string   `validate:"required,datetime=2006-01-02"`
	Amount      *float64 `validate:"required"`
	Quantity    float64  `validate:"gte=0"`
}

var fieldLabels = map[string]string{
	"ProductName": "产品名称",
	"Date":        "日期",
	"Amount":      "金额",
	"Quantity":    "数量",
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("nonblank", validateNonBlank)
	return v
}

func validateNonBlank(fl validator.FieldLevel) bool {
	return strings.TrimSpace(fl.Field().String()) != ""
}

func validateRow(c rowCheck) error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("%w: %v", ErrInvalidRow, err)
	}

	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		label := fieldLabels[fe.StructField()]
		switch fe.Tag() {
		case "required", "nonblank":
			parts = append(parts, "缺少"+label)
		default:
			parts = append(parts, label+"无效")
		}
	}
	return fmt.Errorf("%w: %s", ErrInvalidRow, strings.Join(parts, "，"))
}
