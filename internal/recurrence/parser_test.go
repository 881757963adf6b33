package recurrence

import (
	"errors"
	"testing"
)

func TestParse_ValidDescriptions(t *testing.T) {
	tests := []struct {
		name        string
		description string
		want        Rule
	}{
		{"daily", "매일", Daily()},
		{"every 3 days", "3일마다", Interval(3)},
		{"every day as interval", "1일마다", Interval(1)},
		{"every 30 days", "30일마다", Interval(30)},
		{"longest interval", "36500일마다", Interval(MaxIntervalDays)},
		{"interval with leading zero", "03일마다", Interval(3)},
		{"monthly day with leading zero", "매달 05일", MonthlyByDay(5)},
		{"weekly wednesday", "매주 수요일", Weekly(Wednesday)},
		{"weekly sunday", "매주 일요일", Weekly(Sunday)},
		{"weekly saturday", "매주 토요일", Weekly(Saturday)},
		{"monthly 20th", "매달 20일", MonthlyByDay(20)},
		{"monthly 1st", "매달 1일", MonthlyByDay(1)},
		{"monthly 31st", "매달 31일", MonthlyByDay(31)},
		{"third wednesday", "매달 셋째주 수요일", MonthlyByWeekdayOrdinal(Third, Wednesday)},
		{"first monday", "매달 첫째주 월요일", MonthlyByWeekdayOrdinal(First, Monday)},
		{"second tuesday", "매달 둘째주 화요일", MonthlyByWeekdayOrdinal(Second, Tuesday)},
		{"fourth thursday", "매달 넷째주 목요일", MonthlyByWeekdayOrdinal(Fourth, Thursday)},
		{"last friday", "매달 마지막주 금요일", MonthlyByWeekdayOrdinal(Last, Friday)},
		{"surrounding whitespace", "  매주 금요일 ", Weekly(Friday)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.description)
			if err != nil {
				t.Fatalf("Parse(%q) returned error: %v", tt.description, err)
			}
			if got != tt.want {
				t.Errorf("Parse(%q) = %+v, want %+v", tt.description, got, tt.want)
			}
		})
	}
}

func TestParse_InvalidDescriptions(t *testing.T) {
	tests := []struct {
		name        string
		description string
	}{
		{"empty", ""},
		{"missing space", "매주수요일"},
		{"zero interval", "0일마다"},
		{"negative interval", "-1일마다"},
		{"signed interval", "+3일마다"},
		{"non-numeric interval", "세일마다"},
		{"interval without number", "일마다"},
		{"space inside interval", "3 일마다"},
		{"interval overflow", "99999999999999999999일마다"},
		{"interval at max int64", "9223372036854775807일마다"},
		{"interval over a century", "36501일마다"},
		{"interval of 100000000 days", "100000000일마다"},
		{"day out of range", "매달 32일"},
		{"day zero", "매달 0일"},
		{"day without suffix", "매달 20"},
		{"unsupported grammar", "격주 수요일"},
		{"short weekday after 매주", "매주 수"},
		{"unknown weekday", "매주 수욜"},
		{"fifth week", "매달 다섯째주 수요일"},
		{"ordinal with short weekday", "매달 셋째주 수"},
		{"double space", "매주  수요일"},
		{"trailing punctuation", "매일."},
		{"extra token", "매주 수요일 아침"},
		{"monthly weekday without ordinal", "매달 수요일"},
		{"english", "daily"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rule, err := Parse(tt.description)
			if err == nil {
				t.Fatalf("Parse(%q) = %+v, want error", tt.description, rule)
			}
			if !errors.Is(err, ErrInvalidRepeatCycle) {
				t.Errorf("Parse(%q) error = %v, want ErrInvalidRepeatCycle", tt.description, err)
			}
			if rule != (Rule{}) {
				t.Errorf("Parse(%q) returned non-zero rule on failure: %+v", tt.description, rule)
			}
		})
	}
}

func TestParse_Deterministic(t *testing.T) {
	descriptions := []string{"매일", "3일마다", "매주 수요일", "매달 20일", "매달 셋째주 수요일", "매달 마지막주 금요일"}
	for _, d := range descriptions {
		first, err := Parse(d)
		if err != nil {
			t.Fatalf("Parse(%q) returned error: %v", d, err)
		}
		second, err := Parse(d)
		if err != nil {
			t.Fatalf("Parse(%q) returned error on second call: %v", d, err)
		}
		if first != second {
			t.Errorf("Parse(%q) not deterministic: %+v != %+v", d, first, second)
		}
	}
}

func TestRuleString_RoundTrip(t *testing.T) {
	rules := []Rule{
		Daily(),
		Interval(7),
		Weekly(Monday),
		MonthlyByDay(15),
		MonthlyByWeekdayOrdinal(First, Sunday),
		MonthlyByWeekdayOrdinal(Last, Saturday),
	}
	for _, r := range rules {
		got, err := Parse(r.String())
		if err != nil {
			t.Fatalf("Parse(%q) returned error: %v", r.String(), err)
		}
		if got != r {
			t.Errorf("round trip of %q = %+v, want %+v", r.String(), got, r)
		}
	}

	if got := MonthlyByWeekdayOrdinal(Third, Wednesday).String(); got != "매달 셋째주 수요일" {
		t.Errorf("String() = %q, want %q", got, "매달 셋째주 수요일")
	}
}

func TestValidate(t *testing.T) {
	if err := Validate("매주 월요일"); err != nil {
		t.Errorf("Validate() returned error for valid description: %v", err)
	}
	if err := Validate("매주월요일"); !errors.Is(err, ErrInvalidRepeatCycle) {
		t.Errorf("Validate() error = %v, want ErrInvalidRepeatCycle", err)
	}
}

func TestParseWeekday(t *testing.T) {
	tests := []struct {
		input   string
		want    Weekday
		wantErr bool
	}{
		{"수요일", Wednesday, false},
		{"수", Wednesday, false},
		{"일요일", Sunday, false},
		{"일", Sunday, false},
		{" 토 ", Saturday, false},
		{"수욜", 0, true},
		{"Wed", 0, true},
		{"", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseWeekday(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseWeekday(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("ParseWeekday(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestWeekdayNames(t *testing.T) {
	for wd := Sunday; wd <= Saturday; wd++ {
		full, err := ParseWeekday(wd.String())
		if err != nil || full != wd {
			t.Errorf("ParseWeekday(%q) = %v, %v; want %v", wd.String(), full, err, wd)
		}
		short, err := ParseWeekday(wd.Short())
		if err != nil || short != wd {
			t.Errorf("ParseWeekday(%q) = %v, %v; want %v", wd.Short(), short, err, wd)
		}
		if FromStd(wd.Std()) != wd {
			t.Errorf("FromStd(%v) != %v", wd.Std(), wd)
		}
	}
}
