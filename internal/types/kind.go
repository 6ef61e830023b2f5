package types

import "fmt"

// Kind classifies a Type the way a Type classifies a value. Star is the
// kind of proper types (Int, Bool, List<Int>); Arrow is the kind of type
// constructors still waiting for an argument (List, Option).
type Kind interface {
	String() string
	Equal(Kind) bool
}

type KStar struct{}

func (KStar) String() string { return "*" }
func (KStar) Equal(o Kind) bool {
	_, ok := o.(KStar)
	return ok
}

type KArrow struct {
	From Kind
	To   Kind
}

func (k KArrow) String() string { return fmt.Sprintf("(%s -> %s)", k.From, k.To) }
func (k KArrow) Equal(o Kind) bool {
	other, ok := o.(KArrow)
	if !ok {
		return false
	}
	return k.From.Equal(other.From) && k.To.Equal(other.To)
}

var Star Kind = KStar{}

// builtinKinds records the arity of FORMA's built-in type constructors so
// TApp can compute a result kind without a full kind-inference pass.
var builtinKinds = map[string]Kind{
	"List":    KArrow{Star, Star},
	"Option":  KArrow{Star, Star},
	"Task":    KArrow{Star, Star},
	"Channel": KArrow{Star, Star},
	"Set":     KArrow{Star, Star},
	"Map":     KArrow{Star, KArrow{Star, Star}},
	"Result":  KArrow{Star, KArrow{Star, Star}},
}
