package nmt

import (
	"reflect"
	"testing"
)

func TestNormalize(t *testing.T) {
	cases := map[string]string{
		"  Hello, World!  ":          "hello world !",
		"Ça va très bien.":           "ca va tres bien .",
		"Je m'appelle №7":            "je m appelle",
		"What?!":                     "what ? !",
		"":                           "",
		"1234 5678":                  "",
		"He said: \"don't panic...\"": "he said don t panic . . .",
	}
	for in, expected := range cases {
		if actual := Normalize(in); actual != expected {
			t.Errorf("Normalize(%q): expected %q but got %q", in, expected, actual)
		}
	}
}

func TestTokens(t *testing.T) {
	actual := Tokens("Ils sont arrivés!")
	expected := []string{"ils", "sont", "arrives", "!"}
	if !reflect.DeepEqual(actual, expected) {
		t.Errorf("expected %v but got %v", expected, actual)
	}
}
