package entity

// User is an account row in the users table. Password holds the bcrypt
// hash; the credential verifier clears it before handing the record out.
type User struct {
	ID       string `db:"id"`
	Name     string `db:"name"`
	Email    string `db:"email"`
	Password string `db:"password"`
}
