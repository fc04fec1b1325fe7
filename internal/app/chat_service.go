package app

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"newsrag/internal/ai"
	"newsrag/internal/model"
)

const (
	defaultTopK       = 5
	defaultMaxSources = 3
	// fallbackChunkDelay paces the simulated token stream used when no
	// generative model is configured.
	fallbackChunkDelay = 50 * time.Millisecond
)

var ErrInvalidInput = errors.New("invalid input")

const systemPrompt = "You are a helpful news chatbot. Answer the user's question based on the " +
	"following recent news articles. If the information isn't available in the provided context, " +
	"politely say so and offer general assistance. Keep your response concise and informative."

const fallbackAnswer = "I found some relevant information about your query. Based on recent news, " +
	"there have been various developments related to your question. However, I'm currently unable " +
	"to access my full knowledge base. Please try again later or rephrase your question."

const errorAnswer = "I apologize, but I'm experiencing some technical difficulties right now. " +
	"Please try again in a moment, or rephrase your question."

// ChatModel generates answers from a prompt, optionally streaming fragments.
type ChatModel interface {
	Complete(ctx context.Context, messages []ai.ChatMessage) (string, error)
	StreamComplete(ctx context.Context, messages []ai.ChatMessage, onChunk func(string) error) (string, error)
}

// HistoryLog is the TTL-bounded per-session message log.
type HistoryLog interface {
	Append(ctx context.Context, sessionID string, msg model.Message) error
	List(ctx context.Context, sessionID string) ([]model.Message, error)
	Clear(ctx context.Context, sessionID string) error
}

// AsyncMessagePublisher hands messages off for durable persistence.
type AsyncMessagePublisher interface {
	Publish(ctx context.Context, msg model.Message) error
}

// MessageArchive reads and clears the durable message store.
type MessageArchive interface {
	ListBySessionID(sessionID string, limit int) ([]model.Message, error)
	DeleteBySessionID(sessionID string) error
}

// ChatService answers user queries with retrieval-augmented generation.
// Retrieval is best-effort: a missing or unreachable vector store degrades to
// answering without context, never to a failed query.
type ChatService struct {
	embedder   Embedder
	store      VectorStore
	chatModel  ChatModel // nil means no generative model is configured
	history    HistoryLog
	publisher  AsyncMessagePublisher
	archive    MessageArchive
	topK       int
	maxSources int

	fallbackDelay time.Duration
}

func NewChatService(
	embedder Embedder,
	store VectorStore,
	chatModel ChatModel,
	history HistoryLog,
	publisher AsyncMessagePublisher,
	archive MessageArchive,
	topK int,
	maxSources int,
) *ChatService {
	if topK <= 0 {
		topK = defaultTopK
	}
	if maxSources <= 0 {
		maxSources = defaultMaxSources
	}
	return &ChatService{
		embedder:      embedder,
		store:         store,
		chatModel:     chatModel,
		history:       history,
		publisher:     publisher,
		archive:       archive,
		topK:          topK,
		maxSources:    maxSources,
		fallbackDelay: fallbackChunkDelay,
	}
}

// Retrieve embeds the query and searches the vector store, returning passages
// ranked by descending similarity. Any failure degrades to an empty result.
func (s *ChatService) Retrieve(ctx context.Context, query string, topK int) []model.RetrievedDoc {
	if s.embedder == nil || s.store == nil {
		return nil
	}
	if topK <= 0 {
		topK = s.topK
	}

	vector, err := s.embedder.Embed(ctx, query)
	if err != nil {
		log.Printf("chat: embed query failed: %v", err)
		return nil
	}
	docs, err := s.store.Search(ctx, vector, topK)
	if err != nil {
		log.Printf("chat: search failed: %v", err)
		return nil
	}
	return docs
}

// StreamAnswer answers the query as an ordered event stream: zero or more
// chunk events, then one complete event carrying the source citations (or one
// error event on failure). The channel is closed when the stream ends. The
// producer stops as soon as ctx is canceled.
func (s *ChatService) StreamAnswer(ctx context.Context, sessionID, query string) <-chan model.StreamEvent {
	events := make(chan model.StreamEvent)

	go func() {
		defer close(events)

		emit := func(ev model.StreamEvent) bool {
			select {
			case <-ctx.Done():
				return false
			case events <- ev:
				return true
			}
		}

		docs := s.Retrieve(ctx, query, s.topK)
		s.recordMessage(ctx, sessionID, "user", query, nil)

		var full string
		if s.chatModel == nil {
			if !s.streamWords(ctx, emit, fallbackAnswer) {
				return
			}
			full = fallbackAnswer
		} else {
			answer, err := s.chatModel.StreamComplete(ctx, buildPrompt(docs, query), func(chunk string) error {
				if !emit(model.ChunkEvent(chunk)) {
					return context.Cause(ctx)
				}
				return nil
			})
			if err != nil {
				log.Printf("chat: stream generation failed: %v", err)
				emit(model.ErrorEvent(errorAnswer))
				return
			}
			full = strings.TrimSpace(answer)
		}

		sources := s.citations(docs)
		if !emit(model.CompleteEvent(sources)) {
			return
		}
		s.recordAssistant(ctx, sessionID, full, sources)
	}()

	return events
}

// Answer is the non-streaming variant: it returns the full answer body and
// the source citations. Failures produce a friendly canned answer with no
// sources rather than an error.
func (s *ChatService) Answer(ctx context.Context, sessionID, query string) (string, []model.SourceCitation) {
	docs := s.Retrieve(ctx, query, s.topK)
	s.recordMessage(ctx, sessionID, "user", query, nil)

	var full string
	if s.chatModel == nil {
		full = fallbackAnswer
	} else {
		answer, err := s.chatModel.Complete(ctx, buildPrompt(docs, query))
		if err != nil {
			log.Printf("chat: generation failed: %v", err)
			s.recordAssistant(ctx, sessionID, errorAnswer, nil)
			return errorAnswer, []model.SourceCitation{}
		}
		full = strings.TrimSpace(answer)
	}

	sources := s.citations(docs)
	s.recordAssistant(ctx, sessionID, full, sources)
	return full, sources
}

// History returns the session's messages, preferring the Redis log and
// falling back to the durable archive once the log has expired.
func (s *ChatService) History(ctx context.Context, sessionID string, limit int) ([]model.Message, error) {
	if sessionID == "" {
		return nil, ErrInvalidInput
	}

	if s.history != nil {
		messages, err := s.history.List(ctx, sessionID)
		if err != nil {
			log.Printf("chat: read history log failed: %v", err)
		} else if len(messages) > 0 {
			return trimMessages(messages, limit), nil
		}
	}

	if s.archive == nil {
		return []model.Message{}, nil
	}
	messages, err := s.archive.ListBySessionID(sessionID, limit)
	if err != nil {
		return nil, err
	}
	return messages, nil
}

// ClearSession removes the session's messages from both the log and the
// archive.
func (s *ChatService) ClearSession(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return ErrInvalidInput
	}
	if s.history != nil {
		if err := s.history.Clear(ctx, sessionID); err != nil {
			return err
		}
	}
	if s.archive != nil {
		if err := s.archive.DeleteBySessionID(sessionID); err != nil {
			return err
		}
	}
	return nil
}

// streamWords delivers text word by word with a short delay between chunks,
// preserving the streaming wire protocol when no model is configured.
func (s *ChatService) streamWords(ctx context.Context, emit func(model.StreamEvent) bool, text string) bool {
	words := strings.Fields(text)
	for i, word := range words {
		chunk := word
		if i > 0 {
			chunk = " " + word
		}
		if !emit(model.ChunkEvent(chunk)) {
			return false
		}
		select {
		case <-ctx.Done():
			return false
		case <-time.After(s.fallbackDelay):
		}
	}
	return true
}

func (s *ChatService) citations(docs []model.RetrievedDoc) []model.SourceCitation {
	n := len(docs)
	if n > s.maxSources {
		n = s.maxSources
	}
	sources := make([]model.SourceCitation, 0, n)
	for _, doc := range docs[:n] {
		sources = append(sources, model.SourceCitation{
			Title: doc.Title,
			Date:  doc.Date,
			URL:   doc.URL,
		})
	}
	return sources
}

func (s *ChatService) recordMessage(ctx context.Context, sessionID, role, content string, sources []model.SourceCitation) {
	msg := model.Message{
		MessageID: uuid.NewString(),
		SessionID: sessionID,
		Role:      role,
		Content:   content,
		CreatedAt: time.Now(),
	}
	msg.SetSources(sources)

	if s.history != nil {
		if err := s.history.Append(ctx, sessionID, msg); err != nil {
			log.Printf("chat: append history failed: %v", err)
		}
	}
	if s.publisher != nil {
		if err := s.publisher.Publish(ctx, msg); err != nil {
			log.Printf("chat: publish message failed: %v", err)
		}
	}
}

func (s *ChatService) recordAssistant(ctx context.Context, sessionID, content string, sources []model.SourceCitation) {
	s.recordMessage(ctx, sessionID, "assistant", content, sources)
}

func buildPrompt(docs []model.RetrievedDoc, question string) []ai.ChatMessage {
	blocks := make([]string, 0, len(docs))
	for _, doc := range docs {
		blocks = append(blocks, "Title: "+doc.Title+"\nSource: "+doc.Source+"\nContent: "+doc.Text)
	}

	user := "Context from recent news:\n" + strings.Join(blocks, "\n\n") +
		"\n\nUser question: " + question

	return []ai.ChatMessage{
		{Role: "system", Content: systemPrompt},
		{Role: "user", Content: user},
	}
}

func trimMessages(messages []model.Message, limit int) []model.Message {
	if limit <= 0 || limit >= len(messages) {
		return messages
	}
	return messages[len(messages)-limit:]
}
