package model

// DefaultAdmin is seeded when no admin credential has been stored.
var DefaultAdmin = AdminCredential{Username: "admin", Password: "admin123"}

// SeedStudents returns a fresh copy of the demo roster. Each password is the roll number.
func SeedStudents() []Student {
	seed := []struct {
		roll, name string
		dept       Department
		dob        string
	}{
		{"23CE01", "ADITHYA P", DeptCivil, "05/04/2007"},
		{"23CE02", "ANBALAGAN M", DeptCivil, "24/11/2007"},
		{"23ME01", "ARUN KUMAR S", DeptMech, "12/03/2007"},
		{"23ME02", "BALA MURUGAN K", DeptMech, "15/06/2007"},
		{"23EE01", "DHARANI R", DeptEEE, "20/01/2007"},
		{"23EC01", "GOWTHAM S", DeptECE, "08/09/2007"},
		{"23CS01", "HARISH V", DeptCSE, "11/11/2007"},
		{"23CS02", "KARTHIK R", DeptCSE, "03/07/2007"},
		{"23IT01", "LOKESH M", DeptIT, "22/04/2007"},
		{"23IT02", "NAVEEN K", DeptIT, "19/12/2007"},
	}
	students := make([]Student, 0, len(seed))
	for _, s := range seed {
		students = append(students, Student{
			RollNo:     s.roll,
			Name:       s.name,
			Department: s.dept,
			DOB:        s.dob,
			Password:   s.roll,
		})
	}
	return students
}
