package term

// Pivot enumerates the rotation centers $arc can use, grounded on
// original_source/dance/dance.h's `enum Pivot`.
type Pivot int

const (
	PivotCenter Pivot = iota
	PivotBoxCenter
	PivotSplitCenter
	PivotLineCenter
	PivotInsideHand
	PivotOutsideHand
	PivotLastHand
	PivotLeftHand
	PivotInsideDancer
	PivotOutsideDancer
	PivotLeftDancer
	PivotRightHand
	PivotRightDancer
	PivotHand
	PivotSelf
	PivotNose
	PivotTail
	PivotInsideShoulder
	PivotLeftTwoDancers
)

var pivotNames = [...]string{
	"center", "box center", "split center", "line center", "inside hand",
	"outside hand", "last hand", "left hand", "inside dancer",
	"outside dancer", "left dancer", "right hand", "right dancer", "hand",
	"self", "nose", "tail", "inside shoulder", "left two dancers",
}

func (p Pivot) String() string {
	if int(p) < len(pivotNames) {
		return pivotNames[p]
	}
	return "unknown-pivot"
}
