package testutil

import (
	"reflect"
	"testing"
)

type scope struct {
	name string
}

func (s scope) Name() string {
	return s.name
}

func TestJS(t *testing.T) {
	tests := []struct {
		name string
		arg  interface{}
		want string
	}{
		{
			name: "map",
			arg:  map[string]interface{}{"x": 250},
			want: `{"x":250}`,
		},
		{
			name: "struct",
			arg: struct {
				Name string
				Type string
			}{"x", "Int"},
			want: `{"Name":"x","Type":"Int"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := JS(tt.arg); got != tt.want {
				t.Errorf("JS() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDwimjs(t *testing.T) {
	tests := []struct {
		name string
		arg  interface{}
		want interface{}
	}{
		{
			name: "JSON string",
			arg:  `{"x":250}`,
			want: map[string]interface{}{"x": float64(250)},
		},
		{
			name: "JSON bytes",
			arg:  []byte(`["a","b"]`),
			want: []interface{}{"a", "b"},
		},
		{
			name: "not JSON",
			arg:  "hello world",
			want: "hello world",
		},
		{
			name: "not a string",
			arg:  12345,
			want: 12345,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Dwimjs(tt.arg); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Dwimjs() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestNames(t *testing.T) {
	got := Names([]scope{{"root"}, {"inner"}})
	if !SameStrings(got, []string{"root", "inner"}) {
		t.Fatal(got)
	}
	if !SameStrings(Names([]scope(nil)), nil) {
		t.Fatal("nil")
	}
}
