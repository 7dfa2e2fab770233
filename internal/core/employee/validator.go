package employee

import "strings"

// バリデーションメッセージ
const (
	MsgCodeRequired     = "社員番号を入力してください。"
	MsgCodeDuplicated   = "入力された社員番号の情報は既に存在しています。"
	MsgNameRequired     = "氏名を入力してください。"
	MsgPasswordRequired = "パスワードを入力してください。"
)

// Candidate は検証対象の従業員入力値です。
type Candidate struct {
	Code     string
	Name     string
	Password string
}

// Rules は呼び出し側が事前に判定した検証条件です。
type Rules struct {
	// PasswordRequired は新規作成時に true を指定します。更新時の空パスワードは「変更なし」です。
	PasswordRequired bool
	// CodeTaken は社員番号が他の従業員に使われている場合に true を指定します。
	CodeTaken bool
}

// ValidateEmployee は従業員の入力値を検証し、エラーメッセージの一覧を返します。
func ValidateEmployee(c Candidate, rules Rules) []string {
	errs := make([]string, 0, 3)

	switch {
	case strings.TrimSpace(c.Code) == "":
		errs = append(errs, MsgCodeRequired)
	case rules.CodeTaken:
		errs = append(errs, MsgCodeDuplicated)
	}

	if strings.TrimSpace(c.Name) == "" {
		errs = append(errs, MsgNameRequired)
	}

	if rules.PasswordRequired && c.Password == "" {
		errs = append(errs, MsgPasswordRequired)
	}

	return errs
}
