package player

import "errors"

// ErrEmailTaken is returned by repositories when the email is already registered.
var ErrEmailTaken = errors.New("email already registered")
