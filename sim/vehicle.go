package sim

import "fmt"

// Vehicle is a collection vehicle. The kernel never mutates it.
type Vehicle struct {
	Name     string
	Capacity float64 // in liters
}

func (v *Vehicle) String() string {
	return fmt.Sprintf("Vehicle(name=%s, capacity=%v)", v.Name, v.Capacity)
}
