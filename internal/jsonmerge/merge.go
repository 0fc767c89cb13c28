package jsonmerge

// Merge applies source on top of target and returns the result. Neither
// argument is modified.
//
//   - null source: target is returned unchanged
//   - scalar or array source: source replaces target wholesale
//   - object source: every key of source is applied to a copy of target;
//     object values recurse, everything else (arrays and null included)
//     overwrites. A non-object target is treated as {}.
//
// Since a non-object source replaces the whole target, an update payload that
// is not an object overwrites an entire record.
func Merge(target, source Value) Value {
	switch source.kind {
	case KindNull:
		return target
	case KindObject:
	default:
		return source
	}

	var result *object
	if target.kind == KindObject {
		result = target.obj.clone()
	} else {
		result = newObject(len(source.obj.members))
	}

	for _, m := range source.obj.members {
		if m.val.kind != KindObject {
			result.set(m.key, m.val)
			continue
		}
		existing, ok := result.get(m.key)
		if !ok || existing.kind != KindObject {
			existing = EmptyObject()
		}
		result.set(m.key, Merge(existing, m.val))
	}

	return Value{kind: KindObject, obj: result}
}
