package extract

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"time"
	"unicode/utf8"
)

// RuleExtractor extracts slot values from Korean free text with regular
// expressions. It never fails; unparseable input yields an empty result.
type RuleExtractor struct{}

func NewRuleExtractor() *RuleExtractor {
	return &RuleExtractor{}
}

var (
	destinationPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(제주도?|부산|서울|강릉|경주|전주|여수|속초|대구|광주|인천|대전)`),
		regexp.MustCompile(`([가-힣]{2,})(?:로|에|으로)\s*(?:가|여행)`),
	}
	dateISOPattern   = regexp.MustCompile(`(\d{4})-(\d{1,2})-(\d{1,2})`)
	dateMonthPattern = regexp.MustCompile(`(\d{1,2})월\s*(\d{1,2})일`)
	nightsPattern    = regexp.MustCompile(`(\d+)박\s*(\d+)일`)
	daysPattern      = regexp.MustCompile(`(\d+)일`)
	budgetPattern    = regexp.MustCompile(`(\d+)\s*만\s*원?`)

	companionPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(혼자|혼자서|나 혼자|혼자 여행)`),
		regexp.MustCompile(`(친구\s*\d*명?|친구랑|친구와|친구들?)`),
		regexp.MustCompile(`(가족|부모님|아이들?|아들|딸|형제|자매)`),
		regexp.MustCompile(`(연인|남자친구|여자친구|배우자|부부)`),
		regexp.MustCompile(`(동료|회사\s*동료|직장\s*동료)`),
	}
	purposePatterns = []*regexp.Regexp{
		regexp.MustCompile(`(휴양|휴식|쉬|힐링|재충전)`),
		regexp.MustCompile(`(관광|구경|볼거리|관람|탐방)`),
		regexp.MustCompile(`(먹방|맛집|음식|미식|먹을거리)`),
		regexp.MustCompile(`(액티비티|체험|모험|스포츠|서핑|등산|자전거)`),
		regexp.MustCompile(`(문화|역사|박물관|미술관|전시|공연)`),
		regexp.MustCompile(`(쇼핑|쇼핑하|구매|사고\s*싶)`),
	}
	travelWordPattern    = regexp.MustCompile(`여행`)
	greetingWordPattern  = regexp.MustCompile(`(계획|준비|도와|가자|갈|가고|갈거|여행을|여행 계획)`)
	purposeTravelPattern = regexp.MustCompile(`(휴양\s*여행|관광\s*여행|먹방\s*여행|문화\s*여행)`)
	purposeWordPattern   = regexp.MustCompile(`(휴양|관광|먹방|문화)`)
)

func (e *RuleExtractor) Extract(ctx context.Context, req *Request) (map[string]string, error) {
	text := req.UserText
	extracted := map[string]string{}
	if v := extractDestination(text); v != "" {
		extracted["destination"] = v
	}
	if v := extractDate(text); v != "" {
		extracted["start_date"] = v
	}
	if v := extractDuration(text); v != "" {
		extracted["duration"] = v
	}
	if v := extractBudget(text); v != "" {
		extracted["budget"] = v
	}
	if v := extractCompanions(text); v != "" {
		extracted["companions"] = v
	}
	if v := extractPurpose(text); v != "" {
		extracted["purpose"] = v
	}
	return extracted, nil
}

func extractDestination(text string) string {
	for _, pattern := range destinationPatterns {
		m := pattern.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		dest := m[1]
		// Drop time words that the particle pattern can pick up.
		if utf8.RuneCountInString(dest) < 2 {
			continue
		}
		switch dest {
		case "오늘", "내일", "모레":
			continue
		}
		return dest
	}
	return ""
}

func extractDate(text string) string {
	if m := dateISOPattern.FindStringSubmatch(text); m != nil {
		return fmt.Sprintf("%s-%02d-%02d", m[1], mustAtoi(m[2]), mustAtoi(m[3]))
	}
	if m := dateMonthPattern.FindStringSubmatch(text); m != nil {
		return fmt.Sprintf("%d-%02d-%02d", time.Now().Year(), mustAtoi(m[1]), mustAtoi(m[2]))
	}
	return ""
}

func mustAtoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}

func extractDuration(text string) string {
	if m := nightsPattern.FindStringSubmatch(text); m != nil {
		return fmt.Sprintf("%s박 %s일", m[1], m[2])
	}
	if m := daysPattern.FindStringSubmatch(text); m != nil {
		return m[1] + "일"
	}
	return ""
}

func extractBudget(text string) string {
	if m := budgetPattern.FindStringSubmatch(text); m != nil {
		return m[1] + "만원"
	}
	return ""
}

func extractCompanions(text string) string {
	for _, pattern := range companionPatterns {
		if m := pattern.FindStringSubmatch(text); m != nil {
			return m[1]
		}
	}
	return ""
}

func extractPurpose(text string) string {
	for _, pattern := range purposePatterns {
		if m := pattern.FindStringSubmatch(text); m != nil {
			return m[1]
		}
	}
	// "여행" alone is ambiguous: greeting-style sentences carry no purpose,
	// only compounds like "휴양 여행" do.
	if travelWordPattern.MatchString(text) {
		if greetingWordPattern.MatchString(text) {
			return ""
		}
		if purposeTravelPattern.MatchString(text) {
			if m := purposeWordPattern.FindStringSubmatch(text); m != nil {
				return m[1]
			}
		}
	}
	return ""
}
