package services

import (
	"errors"
	"strings"

	mysql "github.com/go-sql-driver/mysql"
)

var (
	ErrNotFound          = errors.New("not_found")
	ErrInvalidInput      = errors.New("validation")
	ErrMealPlanExists    = errors.New("meal_plan_exists")
	ErrNotBookable       = errors.New("stay_not_fully_available")
	ErrRoomAlreadyBooked = errors.New("room_already_booked")
	ErrEmptyStay         = errors.New("empty_stay")
)

// isDuplicateKey recognises unique violations from MySQL and, by message, from
// the other drivers gorm may run on.
func isDuplicateKey(err error) bool {
	if err == nil {
		return false
	}
	var me *mysql.MySQLError
	if errors.As(err, &me) && me.Number == 1062 {
		return true
	}
	lc := strings.ToLower(err.Error())
	return strings.Contains(lc, "duplicate") || strings.Contains(lc, "unique")
}
