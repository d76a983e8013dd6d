package core

import (
	"fmt"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

func getValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New()
	})
	return validate
}

// NewQuery 使用默认偏好构造查询。
func NewQuery(consumerID string, lat, lon float64) Query {
	q := Query{
		ConsumerID:  consumerID,
		Preferences: DefaultPreferences(),
	}
	q.Location.Lat = lat
	q.Location.Lon = lon
	return q
}

// Validate 校验查询形态；失败时返回 INVALID_INPUT。
func (q Query) Validate() error {
	if err := getValidator().Struct(q); err != nil {
		return NewDomainError(ModuleQuery, ErrorCodeInvalidInput, "query: "+describe(err))
	}
	if _, err := ParseNutritionObjective(string(q.Preferences.NutritionObjective)); err != nil {
		return err
	}
	return nil
}

func describe(err error) string {
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return err.Error()
	}
	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		parts = append(parts, fmt.Sprintf("%s failed %s", fe.Namespace(), fe.Tag()))
	}
	return strings.Join(parts, "; ")
}
