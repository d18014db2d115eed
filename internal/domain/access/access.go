// Package access holds the result of resolving an actor against a folder or file.
// Results are computed per request and never cached.
package access

type (
	Permissions struct {
		View    bool
		Edit    bool
		Delete  bool
		Reshare bool
	}
	Result struct {
		Granted     bool
		Owner       bool
		Permissions Permissions
	}
)

func Full() Permissions { return Permissions{View: true, Edit: true, Delete: true, Reshare: true} }

func ReadOnly() Permissions { return Permissions{View: true} }

// Granted builds a grant-derived permission set; view is always implied.
func Granted(edit, del, reshare bool) Permissions {
	return Permissions{View: true, Edit: edit, Delete: del, Reshare: reshare}
}

func Denied() Result { return Result{} }

func Owned() Result { return Result{Granted: true, Owner: true, Permissions: Full()} }

func Shared(p Permissions) Result {
	p.View = true
	return Result{Granted: true, Permissions: p}
}

// Allows reports whether the result carries every permission in need.
func (r Result) Allows(need Permissions) bool {
	if !r.Granted {
		return false
	}
	p := r.Permissions
	switch {
	case need.View && !p.View,
		need.Edit && !p.Edit,
		need.Delete && !p.Delete,
		need.Reshare && !p.Reshare:
		return false
	}
	return true
}

var (
	NeedView    = Permissions{View: true}
	NeedEdit    = Permissions{View: true, Edit: true}
	NeedDelete  = Permissions{View: true, Delete: true}
	NeedReshare = Permissions{View: true, Reshare: true}
)
