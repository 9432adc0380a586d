package service

import (
	"context"
	"errors"
	"support-bot-go/internal/model"
	"support-bot-go/internal/repository"
	"support-bot-go/pkg/events"
	"support-bot-go/pkg/llm"

	"gorm.io/gorm"
)

// fakeChatTurnRepo 是 ChatTurnRepository 的内存实现，按插入顺序保存轮次。
type fakeChatTurnRepo struct {
	turns     []model.ChatTurn
	nextID    uint
	createErr error
}

func newFakeChatTurnRepo() *fakeChatTurnRepo {
	return &fakeChatTurnRepo{nextID: 1}
}

func (f *fakeChatTurnRepo) Create(turn *model.ChatTurn) error {
	if f.createErr != nil {
		return f.createErr
	}
	turn.ID = f.nextID
	f.nextID++
	f.turns = append(f.turns, *turn)
	return nil
}

func (f *fakeChatTurnRepo) FindByUserID(userID uint) ([]model.ChatTurn, error) {
	var out []model.ChatTurn
	for _, t := range f.turns {
		if t.UserID == userID {
			out = append(out, t)
		}
	}
	return out, nil
}

func (f *fakeChatTurnRepo) FindRecentByUserID(userID uint, limit int) ([]model.ChatTurn, error) {
	asc, _ := f.FindByUserID(userID)
	// 反转为 newest-first，与 SQL 的 ORDER BY created_at DESC 一致
	var out []model.ChatTurn
	for i := len(asc) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, asc[i])
	}
	return out, nil
}

func (f *fakeChatTurnRepo) FindLatestByUserID(userID uint) (*model.ChatTurn, error) {
	recent, _ := f.FindRecentByUserID(userID, 1)
	if len(recent) == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return &recent[0], nil
}

func (f *fakeChatTurnRepo) CountAll() (int64, error) {
	return int64(len(f.turns)), nil
}

func (f *fakeChatTurnRepo) CountAIUsed() (int64, error) {
	var n int64
	for _, t := range f.turns {
		if t.AIUsed {
			n++
		}
	}
	return n, nil
}

func (f *fakeChatTurnRepo) CountByUser() ([]repository.UserTurnCount, error) {
	counts := map[uint]int64{}
	var order []uint
	for _, t := range f.turns {
		if _, ok := counts[t.UserID]; !ok {
			order = append(order, t.UserID)
		}
		counts[t.UserID]++
	}
	var rows []repository.UserTurnCount
	for _, id := range order {
		rows = append(rows, repository.UserTurnCount{UserID: id, Count: counts[id]})
	}
	return rows, nil
}

func (f *fakeChatTurnRepo) CountByIntent() ([]repository.IntentCount, error) {
	counts := map[string]int64{}
	var order []string
	for _, t := range f.turns {
		if _, ok := counts[t.Intent]; !ok {
			order = append(order, t.Intent)
		}
		counts[t.Intent]++
	}
	var rows []repository.IntentCount
	for _, intent := range order {
		rows = append(rows, repository.IntentCount{Intent: intent, Count: counts[intent]})
	}
	return rows, nil
}

func (f *fakeChatTurnRepo) CountByDay() ([]repository.DailyCount, error) {
	return nil, nil
}

// fakeMemoryRepo 是 MemoryRepository 的内存实现。
type fakeMemoryRepo struct {
	summaries map[uint]string
	upsertErr error
}

func newFakeMemoryRepo() *fakeMemoryRepo {
	return &fakeMemoryRepo{summaries: map[uint]string{}}
}

func (f *fakeMemoryRepo) Upsert(ctx context.Context, userID uint, summary string) error {
	if f.upsertErr != nil {
		return f.upsertErr
	}
	f.summaries[userID] = summary
	return nil
}

func (f *fakeMemoryRepo) Get(ctx context.Context, userID uint) (string, error) {
	return f.summaries[userID], nil
}

// fakeLLMClient 返回固定回复或固定错误。
type fakeLLMClient struct {
	reply string
	err   error
	calls int
	// 记录最近一次收到的消息，便于断言 prompt 构造
	lastMessages []llm.Message
}

func (f *fakeLLMClient) Complete(ctx context.Context, messages []llm.Message) (string, error) {
	f.calls++
	f.lastMessages = messages
	if f.err != nil {
		return "", f.err
	}
	return f.reply, nil
}

// fakePublisher 记录发布过的轮次事件。
type fakePublisher struct {
	events []events.ChatTurnEvent
	err    error
}

func (f *fakePublisher) PublishTurnEvent(ctx context.Context, event events.ChatTurnEvent) error {
	if f.err != nil {
		return f.err
	}
	f.events = append(f.events, event)
	return nil
}

// fakeUserRepo 是 UserRepository 的内存实现。
type fakeUserRepo struct {
	users  []model.User
	nextID uint
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{nextID: 1}
}

func (f *fakeUserRepo) Create(user *model.User) error {
	user.ID = f.nextID
	f.nextID++
	f.users = append(f.users, *user)
	return nil
}

func (f *fakeUserRepo) FindByUsername(username string) (*model.User, error) {
	for i := range f.users {
		if f.users[i].Username == username {
			u := f.users[i]
			return &u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeUserRepo) FindByID(id uint) (*model.User, error) {
	for i := range f.users {
		if f.users[i].ID == id {
			u := f.users[i]
			return &u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeUserRepo) FindWithPagination(offset, limit int) ([]model.User, int64, error) {
	total := int64(len(f.users))
	if offset >= len(f.users) {
		return nil, total, nil
	}
	end := offset + limit
	if end > len(f.users) {
		end = len(f.users)
	}
	return f.users[offset:end], total, nil
}

func (f *fakeUserRepo) Count() (int64, error) {
	return int64(len(f.users)), nil
}

var errStorageDown = errors.New("storage down")
