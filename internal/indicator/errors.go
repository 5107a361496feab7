package indicator

import "errors"

// ErrZeroDenominator: знаменатель ровно ноль (например, средняя ширина канала).
var ErrZeroDenominator = errors.New("zero denominator")
