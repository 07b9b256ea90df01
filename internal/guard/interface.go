package guard

// Guard 는 주제 입력 검증 인터페이스다.
// 테스트에서 mock 구현을 주입할 수 있도록 한다.
type Guard interface {
	Evaluate(input string) Evaluation
	EnsureSafe(input string) error
}

var _ Guard = (*InjectionGuard)(nil)
