package enums

type SwipeDirection string

const (
	SwipeDirectionPass      SwipeDirection = "PASS"
	SwipeDirectionLike      SwipeDirection = "LIKE"
	SwipeDirectionSuperLike SwipeDirection = "SUPERLIKE"
)

// SignalsInterest reports whether the direction should create or refresh
// an interest toward the target.
func (d SwipeDirection) SignalsInterest() bool {
	return d == SwipeDirectionLike || d == SwipeDirectionSuperLike
}
