package metrics

import "github.com/kvfsfuse/kvfsfuse/internal/kvfserrors"

// errKind extracts the kvfserrors.Kind label for a failed operation, or
// "unknown" if err is not one of ours.
func errKind(err error) string {
	k, ok := kvfserrors.KindOf(err)
	if !ok {
		return "unknown"
	}
	return k.String()
}
